package testutil

import (
	"context"

	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/service"
	"github.com/haatos/freestyle-multibranch/internal/steps"
	"github.com/stretchr/testify/mock"
)

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) CreateProject(
	ctx context.Context,
	name, description string,
) (*multibranch.Project, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*multibranch.Project), args.Error(1)
}

func (m *MockProjectService) AddProject(ctx context.Context, p *multibranch.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectService) GetProject(ctx context.Context, name string) (*multibranch.Project, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*multibranch.Project), args.Error(1)
}

func (m *MockProjectService) ListProjects(ctx context.Context) ([]*multibranch.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*multibranch.Project), args.Error(1)
}

func (m *MockProjectService) DeleteProject(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockProjectService) SetCriteria(
	ctx context.Context,
	project, tag string,
	form map[string]string,
) (bool, error) {
	args := m.Called(ctx, project, tag, form)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectService) ReplaceTemplate(
	ctx context.Context,
	project string,
	wrappers, builders, publishers []steps.Step,
) error {
	args := m.Called(ctx, project, wrappers, builders, publishers)
	return args.Error(0)
}

func (m *MockProjectService) Reconcile(
	ctx context.Context,
	project string,
	candidates []service.Candidate,
) (*service.ReconcileResult, error) {
	args := m.Called(ctx, project, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReconcileResult), args.Error(1)
}

func (m *MockProjectService) GetJob(ctx context.Context, project, job string) (*multibranch.BranchJob, error) {
	args := m.Called(ctx, project, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*multibranch.BranchJob), args.Error(1)
}

func (m *MockProjectService) SetJobDisabled(ctx context.Context, project, job string, disabled bool) error {
	args := m.Called(ctx, project, job, disabled)
	return args.Error(0)
}

func (m *MockProjectService) ResyncJob(ctx context.Context, project, job string) error {
	args := m.Called(ctx, project, job)
	return args.Error(0)
}

func (m *MockProjectService) LockProject(name string) func() {
	args := m.Called(name)
	return args.Get(0).(func())
}
