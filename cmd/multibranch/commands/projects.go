package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/printer"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjects,
}

var jobsCmd = &cobra.Command{
	Use:   "jobs <project>",
	Short: "List the branch jobs of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobs,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runProjects(cmd *cobra.Command, args []string) error {
	svc := openServices()
	defer svc.Close()

	projects, err := svc.projects.ListProjects(context.Background())
	if err != nil {
		return printer.Error("Unable to list projects", err.Error())
	}
	if len(projects) == 0 {
		printer.Printf("No projects found.\n")
		return nil
	}
	rows := make([][]string, len(projects))
	for i, p := range projects {
		rows[i] = []string{
			p.Name(),
			criteria.Describe(p.Criteria()),
			strconv.Itoa(len(p.Items())),
			p.RepresentativeBranch(),
		}
	}
	return printer.Table([]string{"PROJECT", "CRITERIA", "JOBS", "REPRESENTATIVE"}, rows)
}

func runJobs(cmd *cobra.Command, args []string) error {
	svc := openServices()
	defer svc.Close()

	p, err := svc.projects.GetProject(context.Background(), args[0])
	if err != nil {
		return printer.Error(
			fmt.Sprintf("Project %s not found", args[0]),
			err.Error(),
			"run 'multibranch projects' to list projects",
		)
	}
	jobs := p.Items()
	if len(jobs) == 0 {
		printer.Printf("Project %s has no branch jobs.\n", p.Name())
		return nil
	}
	rows := make([][]string, len(jobs))
	for i, j := range jobs {
		branch := j.Branch()
		rows[i] = []string{
			j.Name(),
			branch.Name,
			string(branch.Head.Kind),
			strconv.FormatBool(j.IsBuildable()),
		}
	}
	return printer.Table([]string{"JOB", "BRANCH", "HEAD", "BUILDABLE"}, rows)
}
