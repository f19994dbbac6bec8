package testutil

import (
	"context"

	"github.com/haatos/freestyle-multibranch/internal/service"
	"github.com/haatos/freestyle-multibranch/internal/store"
	"github.com/stretchr/testify/mock"
)

type MockBuildService struct {
	mock.Mock
}

func (m *MockBuildService) StartBuild(
	ctx context.Context,
	project, job, node string,
) (*service.RunningBuild, error) {
	args := m.Called(ctx, project, job, node)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RunningBuild), args.Error(1)
}

func (m *MockBuildService) FinishBuild(ctx context.Context, buildID string, passed bool) error {
	args := m.Called(ctx, buildID, passed)
	return args.Error(0)
}

func (m *MockBuildService) CancelBuild(ctx context.Context, buildID string) error {
	args := m.Called(ctx, buildID)
	return args.Error(0)
}

func (m *MockBuildService) RunningBuilds() []*service.RunningBuild {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*service.RunningBuild)
}

func (m *MockBuildService) ListJobBuilds(ctx context.Context, project, job string) ([]*store.Build, error) {
	args := m.Called(ctx, project, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Build), args.Error(1)
}
