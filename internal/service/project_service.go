package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/steps"
	"github.com/haatos/freestyle-multibranch/internal/store"
)

type ProjectServicer interface {
	CreateProject(ctx context.Context, name, description string) (*multibranch.Project, error)
	AddProject(context.Context, *multibranch.Project) error
	GetProject(context.Context, string) (*multibranch.Project, error)
	ListProjects(context.Context) ([]*multibranch.Project, error)
	DeleteProject(context.Context, string) error

	SetCriteria(ctx context.Context, project, tag string, form map[string]string) (bool, error)
	ReplaceTemplate(ctx context.Context, project string, wrappers, builders, publishers []steps.Step) error
	Reconcile(ctx context.Context, project string, candidates []Candidate) (*ReconcileResult, error)

	GetJob(ctx context.Context, project, job string) (*multibranch.BranchJob, error)
	SetJobDisabled(ctx context.Context, project, job string, disabled bool) error
	ResyncJob(ctx context.Context, project, job string) error

	LockProject(name string) func()
}

// ProjectService keeps the loaded projects in memory and writes every change
// through to the stores. It is the persister of the projects it manages.
type ProjectService struct {
	projectStore   store.ProjectStore
	branchJobStore store.BranchJobStore
	registry       *steps.Registry

	mu       sync.Mutex
	projects map[string]*multibranch.Project
	locks    map[string]*sync.Mutex
}

func NewProjectService(
	ps store.ProjectStore,
	js store.BranchJobStore,
	registry *steps.Registry,
) *ProjectService {
	if registry == nil {
		registry = steps.Default
	}
	return &ProjectService{
		projectStore:   ps,
		branchJobStore: js,
		registry:       registry,
		projects:       make(map[string]*multibranch.Project),
		locks:          make(map[string]*sync.Mutex),
	}
}

func (s *ProjectService) Registry() *steps.Registry {
	return s.registry
}

func (s *ProjectService) SaveProject(ctx context.Context, p *multibranch.Project) error {
	rec, err := store.NewProjectRecord(p)
	if err != nil {
		return err
	}
	return s.projectStore.UpsertProject(ctx, rec)
}

func (s *ProjectService) SaveBranchJob(ctx context.Context, job *multibranch.BranchJob) error {
	rec, err := store.NewBranchJobRecord(job)
	if err != nil {
		return err
	}
	return s.branchJobStore.UpsertBranchJob(ctx, job.Project().Name(), rec)
}

func (s *ProjectService) CreateProject(
	ctx context.Context,
	name, description string,
) (*multibranch.Project, error) {
	p := multibranch.NewProject(name, s.registry, s)
	p.SetDescription(description)
	if err := s.AddProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddProject saves p and starts managing it. p's persister is replaced by
// the service.
func (s *ProjectService) AddProject(ctx context.Context, p *multibranch.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.Name()]; ok {
		return NewErrProjectExists(p.Name())
	}
	p.SetPersister(s)
	if err := p.Save(ctx); err != nil {
		return err
	}
	for _, job := range p.Items() {
		if err := job.Save(ctx); err != nil {
			return err
		}
	}
	s.projects[p.Name()] = p
	return nil
}

func (s *ProjectService) GetProject(ctx context.Context, name string) (*multibranch.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[name]; ok {
		return p, nil
	}
	rec, err := s.projectStore.ReadProjectByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	p, err := s.load(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.projects[name] = p
	return p, nil
}

// load must be called with s.mu held.
func (s *ProjectService) load(ctx context.Context, rec *store.Project) (*multibranch.Project, error) {
	p, err := rec.Restore(ctx, s.registry, nil)
	if err != nil {
		return nil, fmt.Errorf("restoring project %s: %w", rec.Name, err)
	}
	jobs, err := s.branchJobStore.ListBranchJobs(ctx, rec.Name)
	if err != nil {
		return nil, err
	}
	f := p.NewProjectFactory()
	for _, jr := range jobs {
		job, err := jr.Restore(f)
		if err != nil {
			return nil, fmt.Errorf("restoring job %s/%s: %w", rec.Name, jr.Name, err)
		}
		if err := p.Put(job); err != nil {
			return nil, err
		}
	}
	p.SetPersister(s)
	return p, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]*multibranch.Project, error) {
	recs, err := s.projectStore.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := make([]*multibranch.Project, 0, len(recs))
	for _, rec := range recs {
		p, ok := s.projects[rec.Name]
		if !ok {
			if p, err = s.load(ctx, rec); err != nil {
				return nil, err
			}
			s.projects[rec.Name] = p
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, name string) error {
	if err := s.projectStore.DeleteProject(ctx, name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, name)
	delete(s.locks, name)
	return nil
}

// LockProject holds the lock Reconcile takes for name until the returned
// func is called.
func (s *ProjectService) LockProject(name string) func() {
	return s.lock(name)
}

func (s *ProjectService) lock(name string) func() {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = new(sync.Mutex)
		s.locks[name] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// SetCriteria binds the submitted form and saves the project only when the
// criteria changed. The returned flag tells the caller a reconcile is due.
func (s *ProjectService) SetCriteria(
	ctx context.Context,
	project, tag string,
	form map[string]string,
) (bool, error) {
	c, err := criteria.Bind(tag, form)
	if err != nil {
		return false, err
	}
	p, err := s.GetProject(ctx, project)
	if err != nil {
		return false, err
	}
	unlock := s.lock(project)
	defer unlock()
	if !p.SetCriteria(c) {
		return false, nil
	}
	log.Printf("criteria of %s changed to %s\n", project, criteria.Describe(c))
	return true, p.Save(ctx)
}

func (s *ProjectService) ReplaceTemplate(
	ctx context.Context,
	project string,
	wrappers, builders, publishers []steps.Step,
) error {
	p, err := s.GetProject(ctx, project)
	if err != nil {
		return err
	}
	unlock := s.lock(project)
	defer unlock()
	return p.NewProjectFactory().ReplaceAll(ctx, wrappers, builders, publishers)
}

func (s *ProjectService) GetJob(ctx context.Context, project, job string) (*multibranch.BranchJob, error) {
	p, err := s.GetProject(ctx, project)
	if err != nil {
		return nil, err
	}
	j, ok := p.Item(job)
	if !ok {
		return nil, multibranch.ErrJobNotFound
	}
	return j, nil
}

func (s *ProjectService) SetJobDisabled(ctx context.Context, project, job string, disabled bool) error {
	j, err := s.GetJob(ctx, project, job)
	if err != nil {
		return err
	}
	if disabled {
		return j.Disable(ctx)
	}
	return j.Enable(ctx)
}

func (s *ProjectService) ResyncJob(ctx context.Context, project, job string) error {
	j, err := s.GetJob(ctx, project, job)
	if err != nil {
		return err
	}
	return j.ResyncTemplate(ctx)
}
