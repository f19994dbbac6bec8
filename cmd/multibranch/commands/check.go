package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/printer"
	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/service"
	"github.com/spf13/cobra"
)

var (
	checkTag  string
	checkForm map[string]string
	checkJSON bool
)

var checkCmd = &cobra.Command{
	Use:   "check [branch=]dir...",
	Short: "Evaluate inclusion criteria against local checkouts",
	Long: `check runs the inclusion criteria against one checkout per branch and
prints which branches would get a job. Nothing is stored.

Each argument is a checkout directory, optionally prefixed with the branch
name it holds: feature/login=./checkouts/login. Without a prefix the
directory name is used as the branch name.`,
	Example: `  multibranch check --criteria marker --set file_name=Jenkinsfile main=./main dev=./dev`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkTag, "criteria", criteria.AlwaysInclude{}.Tag(), "criteria type")
	checkCmd.Flags().StringToStringVar(&checkForm, "set", nil, "criteria settings as key=value")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	c, err := criteria.Bind(checkTag, checkForm)
	if err != nil {
		return printer.Error(
			"Invalid criteria",
			err.Error(),
			fmt.Sprintf("known criteria: %s", strings.Join(criteria.Tags(), ", ")),
		)
	}

	candidates, err := localCandidates(args)
	if err != nil {
		return printer.Error("Invalid checkout", err.Error())
	}
	verdicts, log, err := service.EvaluateCandidates(c, candidates)
	if err != nil {
		return printer.Error("Evaluation failed", err.Error())
	}

	if checkJSON {
		enc := json.NewEncoder(printer.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(verdicts)
	}
	names := make([]string, 0, len(verdicts))
	for name := range verdicts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printer.Decision(name, verdicts[name], "")
	}
	if log != "" {
		printer.Printf("\n%s", log)
	}
	return nil
}

func localCandidates(args []string) ([]service.Candidate, error) {
	candidates := make([]service.Candidate, 0, len(args))
	for _, arg := range args {
		name, dir, found := strings.Cut(arg, "=")
		if !found {
			dir = arg
			name = filepath.Base(filepath.Clean(arg))
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dir)
		}
		head := scm.Head{Name: name, Kind: scm.HeadBranch}
		candidates = append(candidates, service.Candidate{
			Branch: scm.NewBranch(name, head, scm.Binding{Kind: "local", Remote: dir}),
			Probe:  scm.NewFSProbe(head, os.DirFS(dir)),
		})
	}
	return candidates, nil
}
