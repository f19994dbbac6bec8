package multibranch

import (
	"context"
	"slices"
	"sync"

	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/steps"
)

// BranchJob is the job generated for one branch. Its name is fixed when it
// is created; the branch it represents can be rebound through the factory.
type BranchJob struct {
	mu         sync.RWMutex
	name       string
	branch     scm.Branch
	disabled   bool
	properties []scm.Property

	wrappers   *steps.List
	builders   *steps.List
	publishers *steps.List

	factory *Factory
}

// JobState is the persisted form of a branch job.
type JobState struct {
	Name       string
	Branch     scm.Branch
	Disabled   bool
	Properties []scm.Property
	Wrappers   []steps.Step
	Builders   []steps.Step
	Publishers []steps.Step
}

func (j *BranchJob) Name() string {
	return j.name
}

func (j *BranchJob) DisplayName() string {
	return j.Branch().Name
}

func (j *BranchJob) IsNameEditable() bool {
	return false
}

// Branch returns the branch currently bound. Builds keep the value they
// captured even if the job is rebound while they run.
func (j *BranchJob) Branch() scm.Branch {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return cloneBranch(j.branch)
}

func (j *BranchJob) SCM() scm.Binding {
	return j.Branch().SCM
}

func (j *BranchJob) IsDisabled() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.disabled
}

func (j *BranchJob) IsBuildable() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return !j.disabled && j.branch.IsBuildable()
}

func (j *BranchJob) Disable(ctx context.Context) error {
	return j.setDisabled(ctx, true)
}

func (j *BranchJob) Enable(ctx context.Context) error {
	return j.setDisabled(ctx, false)
}

func (j *BranchJob) setDisabled(ctx context.Context, disabled bool) error {
	j.mu.Lock()
	if j.disabled == disabled {
		j.mu.Unlock()
		return nil
	}
	j.disabled = disabled
	j.mu.Unlock()
	return j.Save(ctx)
}

func (j *BranchJob) Properties() []scm.Property {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return cloneProperties(j.properties)
}

func (j *BranchJob) SetProperties(ctx context.Context, properties []scm.Property) error {
	j.mu.Lock()
	j.properties = cloneProperties(properties)
	j.mu.Unlock()
	return j.Save(ctx)
}

func (j *BranchJob) Project() *Project {
	if j.factory == nil {
		return nil
	}
	return j.factory.project
}

func (j *BranchJob) Wrappers() []steps.Step {
	return j.wrappers.Items()
}

func (j *BranchJob) Builders() []steps.Step {
	return j.builders.Items()
}

func (j *BranchJob) Publishers() []steps.Step {
	return j.publishers.Items()
}

// ResyncTemplate replaces the job's steps with a fresh copy of the project
// template and saves once.
func (j *BranchJob) ResyncTemplate(ctx context.Context) error {
	snap, err := j.factory.template.Snapshot()
	if err != nil {
		return err
	}
	err = func() error {
		restore := steps.Detach(j.lists()...)
		defer restore()
		return replaceLists(ctx, j.lists(), snap.Wrappers, snap.Builders, snap.Publishers)
	}()
	if err != nil {
		return err
	}
	return j.Save(ctx)
}

func (j *BranchJob) State() JobState {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return JobState{
		Name:       j.name,
		Branch:     cloneBranch(j.branch),
		Disabled:   j.disabled,
		Properties: cloneProperties(j.properties),
		Wrappers:   j.wrappers.Items(),
		Builders:   j.builders.Items(),
		Publishers: j.publishers.Items(),
	}
}

// Save persists the job through its project's persister.
func (j *BranchJob) Save(ctx context.Context) error {
	p := j.Project()
	if p == nil {
		return nil
	}
	return p.persister().SaveBranchJob(ctx, j)
}

func (j *BranchJob) lists() []*steps.List {
	return []*steps.List{j.wrappers, j.builders, j.publishers}
}

func cloneBranch(b scm.Branch) scm.Branch {
	b.Properties = slices.Clone(b.Properties)
	return b
}

func cloneProperties(properties []scm.Property) []scm.Property {
	if properties == nil {
		return []scm.Property{}
	}
	return slices.Clone(properties)
}
