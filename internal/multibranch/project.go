// Package multibranch turns the branches discovered for a project into
// branch jobs copied from one shared template, and decides where their
// builds run.
package multibranch

import (
	"context"
	"sort"
	"sync"

	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/steps"
)

// Persister stores projects and their jobs.
type Persister interface {
	SaveProject(ctx context.Context, p *Project) error
	SaveBranchJob(ctx context.Context, job *BranchJob) error
}

type noopPersister struct{}

func (noopPersister) SaveProject(context.Context, *Project) error     { return nil }
func (noopPersister) SaveBranchJob(context.Context, *BranchJob) error { return nil }

var representativeBranches = []string{"master", "trunk", "default"}

// Project owns the inclusion criteria, the factory with its template and the
// branch jobs generated for one repository.
type Project struct {
	mu          sync.RWMutex
	name        string
	description string
	criteria    criteria.Criteria
	registry    *steps.Registry
	store       Persister
	items       map[string]*BranchJob

	factoryOnce sync.Once
	factory     *Factory
}

// NewProject creates a project accepting every head. A nil persister
// discards saves.
func NewProject(name string, registry *steps.Registry, persister Persister) *Project {
	if registry == nil {
		registry = steps.Default
	}
	if persister == nil {
		persister = noopPersister{}
	}
	return &Project{
		name:     name,
		criteria: criteria.AlwaysInclude{},
		registry: registry,
		store:    persister,
		items:    make(map[string]*BranchJob),
	}
}

// NewProjectFrom creates a project whose template is a copy of prototype's.
func NewProjectFrom(name string, prototype *Factory, persister Persister) (*Project, error) {
	p := NewProject(name, prototype.template.registry, persister)
	f, err := prototype.Clone(p)
	if err != nil {
		return nil, err
	}
	p.factoryOnce.Do(func() { p.factory = f })
	return p, nil
}

func (p *Project) Name() string {
	return p.name
}

func (p *Project) Description() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.description
}

func (p *Project) SetDescription(description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.description = description
}

// NewProjectFactory returns the project's factory, creating it on first use.
func (p *Project) NewProjectFactory() *Factory {
	p.factoryOnce.Do(func() {
		p.factory = newFactory(p, p.registry)
	})
	return p.factory
}

// Criteria returns the configured criteria, never nil.
func (p *Project) Criteria() criteria.Criteria {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.criteria
}

// InclusionCriteria returns nil when the project accepts all heads through
// AlwaysInclude.
func (p *Project) InclusionCriteria() criteria.Criteria {
	c := p.Criteria()
	if _, ok := c.(criteria.AlwaysInclude); ok {
		return nil
	}
	return c
}

// SetCriteria reports whether c differs from the current criteria. A nil c
// resets to AlwaysInclude.
func (p *Project) SetCriteria(c criteria.Criteria) bool {
	if c == nil {
		c = criteria.AlwaysInclude{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if criteria.Equal(p.criteria, c) {
		return false
	}
	p.criteria = c
	return true
}

func (p *Project) Item(name string) (*BranchJob, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	job, ok := p.items[name]
	return job, ok
}

// Items lists the jobs sorted by name.
func (p *Project) Items() []*BranchJob {
	p.mu.RLock()
	defer p.mu.RUnlock()
	jobs := make([]*BranchJob, 0, len(p.items))
	for _, job := range p.items {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name() < jobs[j].Name() })
	return jobs
}

// Put adds job under its name. Jobs from another factory and duplicate names
// are rejected.
func (p *Project) Put(job *BranchJob) error {
	if !p.NewProjectFactory().IsProject(job) {
		return ErrForeignJob
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.items[job.Name()]; ok {
		return ErrJobExists
	}
	p.items[job.Name()] = job
	return nil
}

func (p *Project) Remove(name string) (*BranchJob, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	job, ok := p.items[name]
	if ok {
		delete(p.items, name)
	}
	return job, ok
}

// RepresentativeBranch names the job used when a single branch stands for
// the whole project: master, trunk or default if present, else the first job
// by name.
func (p *Project) RepresentativeBranch() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, name := range representativeBranches {
		if _, ok := p.items[name]; ok {
			return name
		}
	}
	first := ""
	for name := range p.items {
		if first == "" || name < first {
			first = name
		}
	}
	return first
}

func (p *Project) SetPersister(persister Persister) {
	if persister == nil {
		persister = noopPersister{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store = persister
}

func (p *Project) persister() Persister {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store
}

func (p *Project) Save(ctx context.Context) error {
	return p.persister().SaveProject(ctx, p)
}
