package handler

import (
	"time"

	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/steps"
	"github.com/haatos/freestyle-multibranch/internal/store"
)

type CriteriaView struct {
	Tag         string            `json:"tag"`
	Form        map[string]string `json:"form"`
	Description string            `json:"description"`
}

type ProjectView struct {
	Name                 string       `json:"name"`
	Description          string       `json:"description"`
	Criteria             CriteriaView `json:"criteria"`
	Jobs                 []string     `json:"jobs"`
	RepresentativeBranch string       `json:"representative_branch"`
}

type TemplateView struct {
	Wrappers   []steps.Record `json:"wrappers"`
	Builders   []steps.Record `json:"builders"`
	Publishers []steps.Record `json:"publishers"`
}

type JobView struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Branch      scm.Branch     `json:"branch"`
	Buildable   bool           `json:"buildable"`
	Disabled    bool           `json:"disabled"`
	Properties  []scm.Property `json:"properties"`
	Template    TemplateView   `json:"template"`
}

type NodeView struct {
	Name        string `json:"name"`
	Hostname    string `json:"hostname"`
	Workspace   string `json:"workspace"`
	Username    string `json:"username"`
	Online      bool   `json:"online"`
	Description string `json:"description"`
}

type BuildView struct {
	BuildID       string            `json:"build_id"`
	JobName       string            `json:"job_name"`
	NodeName      string            `json:"node_name"`
	WorkspacePath string            `json:"workspace_path"`
	HeadName      string            `json:"head_name"`
	Status        store.BuildStatus `json:"status"`
	StartedOn     time.Time         `json:"started_on"`
	EndedOn       *time.Time        `json:"ended_on,omitempty"`
}

func newCriteriaView(c criteria.Criteria) CriteriaView {
	tag, form := criteria.Form(c)
	return CriteriaView{Tag: tag, Form: form, Description: criteria.Describe(c)}
}

func newProjectView(p *multibranch.Project) ProjectView {
	jobs := p.Items()
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name()
	}
	return ProjectView{
		Name:                 p.Name(),
		Description:          p.Description(),
		Criteria:             newCriteriaView(p.Criteria()),
		Jobs:                 names,
		RepresentativeBranch: p.RepresentativeBranch(),
	}
}

func newTemplateView(wrappers, builders, publishers []steps.Step) TemplateView {
	return TemplateView{
		Wrappers:   steps.Records(wrappers),
		Builders:   steps.Records(builders),
		Publishers: steps.Records(publishers),
	}
}

func newJobView(j *multibranch.BranchJob) JobView {
	state := j.State()
	return JobView{
		Name:        state.Name,
		DisplayName: state.Branch.Name,
		Branch:      state.Branch,
		Buildable:   j.IsBuildable(),
		Disabled:    state.Disabled,
		Properties:  state.Properties,
		Template:    newTemplateView(state.Wrappers, state.Builders, state.Publishers),
	}
}

func newNodeView(n *store.Node) NodeView {
	return NodeView{
		Name:        n.Name,
		Hostname:    n.Hostname,
		Workspace:   n.Workspace,
		Username:    n.Username,
		Online:      n.Online,
		Description: n.Description,
	}
}

func newBuildView(b *store.Build) BuildView {
	return BuildView{
		BuildID:       b.BuildID,
		JobName:       b.JobName,
		NodeName:      b.NodeName,
		WorkspacePath: b.WorkspacePath,
		HeadName:      b.HeadName,
		Status:        b.Status,
		StartedOn:     b.StartedOn,
		EndedOn:       b.EndedOn,
	}
}
