package multibranch

import (
	"context"
	"log"

	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/steps"
)

// Factory materializes and rebinds the branch jobs of one project from the
// project's template.
type Factory struct {
	project  *Project
	template *Template
}

func newFactory(project *Project, registry *steps.Registry) *Factory {
	return &Factory{
		project:  project,
		template: newTemplate(registry, project),
	}
}

func (f *Factory) Project() *Project {
	return f.project
}

func (f *Factory) Template() *Template {
	return f.template
}

// NewInstance builds a job for branch with its own copy of the template. The
// job is not saved.
func (f *Factory) NewInstance(branch scm.Branch) (*BranchJob, error) {
	snap, err := f.template.Snapshot()
	if err != nil {
		return nil, err
	}
	return f.restore(JobState{
		Name:       branch.EncodedName(),
		Branch:     branch,
		Properties: []scm.Property{},
		Wrappers:   snap.Wrappers,
		Builders:   snap.Builders,
		Publishers: snap.Publishers,
	})
}

// Restore rebuilds a persisted job without saving it.
func (f *Factory) Restore(state JobState) (*BranchJob, error) {
	wrappers, err := f.template.registry.Clone(state.Wrappers)
	if err != nil {
		return nil, err
	}
	builders, err := f.template.registry.Clone(state.Builders)
	if err != nil {
		return nil, err
	}
	publishers, err := f.template.registry.Clone(state.Publishers)
	if err != nil {
		return nil, err
	}
	state.Wrappers, state.Builders, state.Publishers = wrappers, builders, publishers
	return f.restore(state)
}

func (f *Factory) restore(state JobState) (*BranchJob, error) {
	registry := f.template.registry
	job := &BranchJob{
		name:       state.Name,
		branch:     cloneBranch(state.Branch),
		disabled:   state.Disabled,
		properties: cloneProperties(state.Properties),
		factory:    f,
		wrappers:   steps.NewWrapperList(registry, nil),
		builders:   steps.NewBuilderList(registry, nil),
		publishers: steps.NewPublisherList(registry, nil),
	}
	if err := replaceLists(context.Background(), job.lists(), state.Wrappers, state.Builders, state.Publishers); err != nil {
		return nil, err
	}
	for _, l := range job.lists() {
		l.SetOwner(job)
	}
	return job, nil
}

// SetBranch rebinds job to branch in place. The job is saved only when the
// branch actually changed; a failed save is logged and the rebind stands.
func (f *Factory) SetBranch(ctx context.Context, job *BranchJob, branch scm.Branch) *BranchJob {
	job.mu.Lock()
	changed := !job.branch.Equal(branch)
	job.branch = cloneBranch(branch)
	job.mu.Unlock()

	if changed {
		if err := job.Save(ctx); err != nil {
			log.Printf("err setting branch: %+v\n", NewRebindSaveError(job.Name(), err))
		}
	}
	return job
}

func (f *Factory) IsProject(item any) bool {
	job, ok := item.(*BranchJob)
	return ok && job != nil && job.factory == f
}

func (f *Factory) GetBranch(job *BranchJob) scm.Branch {
	return job.Branch()
}

// ReplaceAll swaps the three template lists as one unit. No save happens
// while the lists are being replaced; the project is saved once afterwards.
// The project is reattached as the lists' owner on every exit path.
func (f *Factory) ReplaceAll(ctx context.Context, wrappers, builders, publishers []steps.Step) error {
	if err := f.replaceAll(ctx, wrappers, builders, publishers); err != nil {
		rerr := NewTemplateReplaceError(f.project.Name(), err)
		log.Printf("err replacing template: %+v\n", rerr)
		return rerr
	}
	return nil
}

func (f *Factory) replaceAll(ctx context.Context, wrappers, builders, publishers []steps.Step) error {
	t := f.template
	t.mu.Lock()
	err := func() error {
		restore := steps.Detach(t.lists()...)
		defer restore()
		return replaceLists(ctx, t.lists(), wrappers, builders, publishers)
	}()
	t.mu.Unlock()
	if err != nil {
		return err
	}
	return f.project.Save(ctx)
}

// Clone copies the template into a new factory owned by project.
func (f *Factory) Clone(project *Project) (*Factory, error) {
	snap, err := f.template.Snapshot()
	if err != nil {
		return nil, err
	}
	clone := newFactory(project, f.template.registry)
	restore := steps.Detach(clone.template.lists()...)
	defer restore()
	if err := replaceLists(context.Background(), clone.template.lists(), snap.Wrappers, snap.Builders, snap.Publishers); err != nil {
		return nil, err
	}
	return clone, nil
}

func replaceLists(ctx context.Context, lists []*steps.List, items ...[]steps.Step) error {
	for i, l := range lists {
		if err := l.ReplaceBy(ctx, items[i]); err != nil {
			return err
		}
	}
	return nil
}
