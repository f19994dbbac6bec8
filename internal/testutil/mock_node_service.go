package testutil

import (
	"context"
	"io"

	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/store"
	"github.com/stretchr/testify/mock"
)

type MockNodeService struct {
	mock.Mock
}

func (m *MockNodeService) CreateNode(
	ctx context.Context,
	name, hostname, workspace, username, privateKey, description string,
) (*store.Node, error) {
	args := m.Called(ctx, name, hostname, workspace, username, privateKey, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Node), args.Error(1)
}

func (m *MockNodeService) GetNode(ctx context.Context, name string) (*store.Node, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Node), args.Error(1)
}

func (m *MockNodeService) ListNodes(ctx context.Context) ([]*store.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Node), args.Error(1)
}

func (m *MockNodeService) UpdateNode(
	ctx context.Context,
	name, hostname, workspace, username, privateKey, description string,
) error {
	args := m.Called(ctx, name, hostname, workspace, username, privateKey, description)
	return args.Error(0)
}

func (m *MockNodeService) SetNodeOnline(ctx context.Context, name string, online bool) error {
	args := m.Called(ctx, name, online)
	return args.Error(0)
}

func (m *MockNodeService) DeleteNode(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockNodeService) ResolveNode(ctx context.Context, name string) (multibranch.Node, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(multibranch.Node), args.Error(1)
}

func (m *MockNodeService) OpenProbe(
	ctx context.Context,
	node string,
	head scm.Head,
	root string,
) (scm.Probe, io.Closer, error) {
	args := m.Called(ctx, node, head, root)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(scm.Probe), args.Get(1).(io.Closer), args.Error(2)
}

func (m *MockNodeService) TestNodeConnection(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
