package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/store"
	"github.com/haatos/freestyle-multibranch/internal/util"
	"github.com/haatos/freestyle-multibranch/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestBuildService(t *testing.T, node *store.Node) (*BuildService, *ProjectService, *MockBuildStore, *workspace.List) {
	t.Helper()
	projectService, _, _ := newTestProjectService()
	ctx := context.Background()
	_, err := projectService.CreateProject(ctx, "repo", "")
	assert.NoError(t, err)
	_, err = projectService.Reconcile(ctx, "repo", []Candidate{
		{Branch: generateBranch("master")},
		{Branch: generateBranch("feature/x")},
	})
	assert.NoError(t, err)

	mockNodeStore := new(MockNodeStore)
	mockNodeStore.On("ReadNodeByName", mock.Anything, node.Name).Return(node, nil)
	mockBuildStore := new(MockBuildStore)
	mockBuildStore.On("CreateBuild", mock.Anything, "repo", mock.Anything).Return(nil)
	mockBuildStore.On("UpdateBuildEnded", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	workspaces := workspace.NewList()
	buildService := NewBuildService(
		projectService,
		NewNodeService(mockNodeStore, newTestEncrypter()),
		mockBuildStore,
		workspaces,
		0,
	)
	return buildService, projectService, mockBuildStore, workspaces
}

func TestBuildService_StartBuild(t *testing.T) {
	t.Run("success - build leases the job workspace", func(t *testing.T) {
		// arrange
		buildService, _, mockBuildStore, workspaces := newTestBuildService(t, generateNode("linux-1", "/srv/ws", true))

		// act
		rb, err := buildService.StartBuild(context.Background(), "repo", "feature-x", "linux-1")

		// assert
		expected := "/srv/ws/" + util.ProjectDir("repo") + "/feature-x"
		assert.NoError(t, err)
		assert.Equal(t, expected, rb.Lease.Path)
		assert.Equal(t, expected, rb.Build.WorkspacePath)
		assert.Equal(t, "feature/x", rb.Branch.Name)
		assert.Equal(t, store.StatusRunning, rb.Build.Status)
		assert.True(t, workspaces.InUse("linux-1", expected))
		assert.Len(t, buildService.RunningBuilds(), 1)
		mockBuildStore.AssertNumberOfCalls(t, "CreateBuild", 1)
	})
	t.Run("success - build keeps the branch captured at start", func(t *testing.T) {
		// arrange
		buildService, projectService, _, _ := newTestBuildService(t, generateNode("linux-1", "/srv/ws", true))
		ctx := context.Background()
		rb, err := buildService.StartBuild(ctx, "repo", "master", "linux-1")
		assert.NoError(t, err)
		b := generateBranch("master")
		b.Head.Name = "master@2"

		// act
		_, err = projectService.Reconcile(ctx, "repo", []Candidate{{Branch: b}})

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "master", rb.Branch.Head.Name)
		job, err := projectService.GetJob(ctx, "repo", "master")
		assert.NoError(t, err)
		assert.Equal(t, "master@2", job.Branch().Head.Name)
	})
	t.Run("failure - disconnected node", func(t *testing.T) {
		// arrange
		buildService, _, mockBuildStore, _ := newTestBuildService(t, generateNode("linux-1", "/srv/ws", false))

		// act
		rb, err := buildService.StartBuild(context.Background(), "repo", "master", "linux-1")

		// assert
		assert.Nil(t, rb)
		var nodeErr *multibranch.NodeDisconnectedError
		assert.True(t, errors.As(err, &nodeErr))
		mockBuildStore.AssertNotCalled(t, "CreateBuild", mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("failure - disabled job is not buildable", func(t *testing.T) {
		// arrange
		buildService, projectService, _, _ := newTestBuildService(t, generateNode("linux-1", "/srv/ws", true))
		assert.NoError(t, projectService.SetJobDisabled(context.Background(), "repo", "master", true))

		// act
		_, err := buildService.StartBuild(context.Background(), "repo", "master", "linux-1")

		// assert
		assert.ErrorIs(t, err, multibranch.ErrNotBuildable)
	})
	t.Run("failure - lease wait times out", func(t *testing.T) {
		// arrange
		buildService, _, _, _ := newTestBuildService(t, generateNode("linux-1", "/srv/ws", true))
		buildService.leaseWait = 20 * time.Millisecond
		_, err := buildService.StartBuild(context.Background(), "repo", "master", "linux-1")
		assert.NoError(t, err)

		// act
		_, err = buildService.StartBuild(context.Background(), "repo", "master", "linux-1")

		// assert
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestBuildService_CancelBuild(t *testing.T) {
	t.Run("success - cancel releases the lease", func(t *testing.T) {
		// arrange
		buildService, _, mockBuildStore, workspaces := newTestBuildService(t, generateNode("linux-1", "/srv/ws", true))
		ctx := context.Background()
		rb, err := buildService.StartBuild(ctx, "repo", "master", "linux-1")
		assert.NoError(t, err)

		// act
		err = buildService.CancelBuild(ctx, rb.Build.BuildID)

		// assert
		assert.NoError(t, err)
		assert.False(t, workspaces.InUse("linux-1", rb.Lease.Path))
		assert.Equal(t, store.StatusCancelled, rb.Build.Status)
		assert.NotNil(t, rb.Build.EndedOn)
		mockBuildStore.AssertCalled(t, "UpdateBuildEnded", ctx, rb.Build.BuildID, store.StatusCancelled, mock.Anything)
		assert.ErrorIs(t, buildService.CancelBuild(ctx, rb.Build.BuildID), ErrBuildNotRunning)
	})
}

func TestBuildService_FinishBuild(t *testing.T) {
	t.Run("success - next build of the job can start", func(t *testing.T) {
		// arrange
		buildService, _, _, _ := newTestBuildService(t, generateNode("linux-1", "/srv/ws", true))
		ctx := context.Background()
		first, err := buildService.StartBuild(ctx, "repo", "master", "linux-1")
		assert.NoError(t, err)

		// act
		err = buildService.FinishBuild(ctx, first.Build.BuildID, true)
		second, err2 := buildService.StartBuild(ctx, "repo", "master", "linux-1")

		// assert
		assert.NoError(t, err)
		assert.NoError(t, err2)
		assert.Equal(t, store.StatusPassed, first.Build.Status)
		assert.Equal(t, first.Lease.Path, second.Lease.Path)
	})
}
