package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/steps"
)

type Project struct {
	ProjectID    int64
	Kind         string
	Name         string
	Description  string
	CriteriaTag  string
	CriteriaForm string
	Wrappers     string
	Builders     string
	Publishers   string
	CreatedOn    time.Time
	UpdatedOn    time.Time
}

type BranchJob struct {
	BranchJobID        int64
	BranchJobProjectID int64
	Kind               string
	Name               string
	Branch             string
	Disabled           bool
	Properties         string
	Wrappers           string
	Builders           string
	Publishers         string
	UpdatedOn          time.Time
}

type ProjectStore interface {
	UpsertProject(context.Context, *Project) error
	ReadProjectByName(context.Context, string) (*Project, error)
	ListProjects(context.Context) ([]*Project, error)
	DeleteProject(context.Context, string) error
}

type BranchJobStore interface {
	UpsertBranchJob(context.Context, string, *BranchJob) error
	ReadBranchJob(context.Context, string, string) (*BranchJob, error)
	ListBranchJobs(context.Context, string) ([]*BranchJob, error)
	DeleteBranchJob(context.Context, string, string) error
}

// NewProjectRecord encodes p and its template for storage.
func NewProjectRecord(p *multibranch.Project) (*Project, error) {
	kind, err := ProjectKind()
	if err != nil {
		return nil, err
	}
	f := p.NewProjectFactory()
	snap, err := f.Template().Snapshot()
	if err != nil {
		return nil, err
	}
	tag, form := criteria.Form(p.Criteria())
	formJSON, err := json.Marshal(form)
	if err != nil {
		return nil, err
	}
	rec := &Project{
		Kind:         kind,
		Name:         p.Name(),
		Description:  p.Description(),
		CriteriaTag:  tag,
		CriteriaForm: string(formJSON),
	}
	registry := f.Template().Registry()
	if rec.Wrappers, err = encodeSteps(registry, snap.Wrappers); err != nil {
		return nil, err
	}
	if rec.Builders, err = encodeSteps(registry, snap.Builders); err != nil {
		return nil, err
	}
	if rec.Publishers, err = encodeSteps(registry, snap.Publishers); err != nil {
		return nil, err
	}
	return rec, nil
}

// Restore rebuilds the project described by rec. Nothing is saved while
// restoring; persister is attached afterwards.
func (rec *Project) Restore(
	ctx context.Context,
	registry *steps.Registry,
	persister multibranch.Persister,
) (*multibranch.Project, error) {
	if err := checkKind(rec.Kind, ProjectKind); err != nil {
		return nil, err
	}
	form := map[string]string{}
	if rec.CriteriaForm != "" {
		if err := json.Unmarshal([]byte(rec.CriteriaForm), &form); err != nil {
			return nil, err
		}
	}
	c, err := criteria.Bind(rec.CriteriaTag, form)
	if err != nil {
		return nil, err
	}
	wrappers, err := registry.Decode([]byte(rec.Wrappers))
	if err != nil {
		return nil, err
	}
	builders, err := registry.Decode([]byte(rec.Builders))
	if err != nil {
		return nil, err
	}
	publishers, err := registry.Decode([]byte(rec.Publishers))
	if err != nil {
		return nil, err
	}

	p := multibranch.NewProject(rec.Name, registry, nil)
	p.SetDescription(rec.Description)
	p.SetCriteria(c)
	if err := p.NewProjectFactory().ReplaceAll(ctx, wrappers, builders, publishers); err != nil {
		return nil, err
	}
	p.SetPersister(persister)
	return p, nil
}

// NewBranchJobRecord encodes job for storage.
func NewBranchJobRecord(job *multibranch.BranchJob) (*BranchJob, error) {
	kind, err := BranchJobKind()
	if err != nil {
		return nil, err
	}
	state := job.State()
	branch, err := json.Marshal(state.Branch)
	if err != nil {
		return nil, err
	}
	properties, err := json.Marshal(state.Properties)
	if err != nil {
		return nil, err
	}
	rec := &BranchJob{
		Kind:       kind,
		Name:       state.Name,
		Branch:     string(branch),
		Disabled:   state.Disabled,
		Properties: string(properties),
	}
	registry := job.Project().NewProjectFactory().Template().Registry()
	if rec.Wrappers, err = encodeSteps(registry, state.Wrappers); err != nil {
		return nil, err
	}
	if rec.Builders, err = encodeSteps(registry, state.Builders); err != nil {
		return nil, err
	}
	if rec.Publishers, err = encodeSteps(registry, state.Publishers); err != nil {
		return nil, err
	}
	return rec, nil
}

// Restore rebuilds the job described by rec through f without saving it.
func (rec *BranchJob) Restore(f *multibranch.Factory) (*multibranch.BranchJob, error) {
	if err := checkKind(rec.Kind, BranchJobKind); err != nil {
		return nil, err
	}
	state := multibranch.JobState{
		Name:     rec.Name,
		Disabled: rec.Disabled,
	}
	if err := json.Unmarshal([]byte(rec.Branch), &state.Branch); err != nil {
		return nil, err
	}
	state.Properties = []scm.Property{}
	if rec.Properties != "" {
		if err := json.Unmarshal([]byte(rec.Properties), &state.Properties); err != nil {
			return nil, err
		}
	}
	registry := f.Template().Registry()
	var err error
	if state.Wrappers, err = registry.Decode([]byte(rec.Wrappers)); err != nil {
		return nil, err
	}
	if state.Builders, err = registry.Decode([]byte(rec.Builders)); err != nil {
		return nil, err
	}
	if state.Publishers, err = registry.Decode([]byte(rec.Publishers)); err != nil {
		return nil, err
	}
	return f.Restore(state)
}

func encodeSteps(registry *steps.Registry, items []steps.Step) (string, error) {
	data, err := registry.Encode(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
