package commands

import (
	"context"
	"os"

	"github.com/haatos/freestyle-multibranch/internal/printer"
	"github.com/spf13/cobra"
)

var (
	nodeHostname    string
	nodeWorkspace   string
	nodeUsername    string
	nodeKeyFile     string
	nodeDescription string
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List build nodes",
	Args:  cobra.NoArgs,
	RunE:  runNodes,
}

var nodesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a build node reachable over SSH",
	Args:  cobra.ExactArgs(1),
	RunE:  runNodesAdd,
}

func init() {
	nodesAddCmd.Flags().StringVar(&nodeHostname, "hostname", "", "host:port of the node's SSH server")
	nodesAddCmd.Flags().StringVar(&nodeWorkspace, "workspace", "", "workspace root on the node")
	nodesAddCmd.Flags().StringVar(&nodeUsername, "username", "", "SSH user")
	nodesAddCmd.Flags().StringVar(&nodeKeyFile, "key-file", "", "SSH private key file")
	nodesAddCmd.Flags().StringVar(&nodeDescription, "description", "", "free text description")
	_ = nodesAddCmd.MarkFlagRequired("hostname")
	_ = nodesAddCmd.MarkFlagRequired("workspace")
	_ = nodesAddCmd.MarkFlagRequired("key-file")
	nodesCmd.AddCommand(nodesAddCmd)
	rootCmd.AddCommand(nodesCmd)
}

func runNodes(cmd *cobra.Command, args []string) error {
	svc := openServices()
	defer svc.Close()

	nodes, err := svc.nodes.ListNodes(context.Background())
	if err != nil {
		return printer.Error("Unable to list nodes", err.Error())
	}
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		status := "online"
		if !n.Online {
			status = "offline"
		}
		rows[i] = []string{n.Name, n.Hostname, n.Workspace, status}
	}
	return printer.Table([]string{"NODE", "HOSTNAME", "WORKSPACE", "STATUS"}, rows)
}

func runNodesAdd(cmd *cobra.Command, args []string) error {
	key, err := os.ReadFile(nodeKeyFile)
	if err != nil {
		return printer.Error("Unable to read private key", err.Error())
	}

	svc := openServices()
	defer svc.Close()

	ctx := context.Background()
	n, err := svc.nodes.CreateNode(
		ctx,
		args[0],
		nodeHostname,
		nodeWorkspace,
		nodeUsername,
		string(key),
		nodeDescription,
	)
	if err != nil {
		return printer.Error("Unable to register node", err.Error())
	}
	if err := svc.nodes.TestNodeConnection(ctx, n.Name); err != nil {
		printer.Warning("node %s registered but not reachable: %v", n.Name, err)
		return nil
	}
	printer.Success("node %s registered", n.Name)
	return nil
}
