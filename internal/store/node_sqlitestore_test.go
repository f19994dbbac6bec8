package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/haatos/freestyle-multibranch/internal"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/steps"
	"github.com/stretchr/testify/suite"
)

type nodeSQLiteStoreSuite struct {
	nodeStore  *NodeSQLiteStore
	buildStore *BuildSQLiteStore
	db         *sql.DB
	suite.Suite
}

func TestNodeSQLiteStore(t *testing.T) {
	suite.Run(t, new(nodeSQLiteStoreSuite))
}

func (suite *nodeSQLiteStoreSuite) SetupSuite() {
	suite.db = openTestDatabase()
	suite.nodeStore = NewNodeSQLiteStore(suite.db, suite.db)
	suite.buildStore = NewBuildSQLiteStore(suite.db, suite.db)
}

func (suite *nodeSQLiteStoreSuite) TearDownSuite() {
	_ = suite.db.Close()
}

func (suite *nodeSQLiteStoreSuite) TestNodeSQLiteStore_CreateControllerNode() {
	// act
	n, err := suite.nodeStore.CreateControllerNode(context.Background(), "/var/lib/multibranch/workspace")

	// assert
	suite.NoError(err)
	suite.NotZero(n.NodeID)
	suite.Equal(internal.ControllerNodeName, n.Name)
	suite.True(n.Online)
}

func (suite *nodeSQLiteStoreSuite) TestNodeSQLiteStore_CreateNode() {
	suite.Run("success - node created and read back", func() {
		// act
		n, err := suite.nodeStore.CreateNode(
			context.Background(),
			"linux-1", "10.0.0.5:2222", "/srv/ws", "builder", "hash", "linux node",
		)

		// assert
		suite.NoError(err)
		read, err := suite.nodeStore.ReadNodeByName(context.Background(), "linux-1")
		suite.NoError(err)
		suite.Equal(n.NodeID, read.NodeID)
		suite.Equal("10.0.0.5:2222", read.Hostname)
		suite.Equal("/srv/ws", read.Workspace)
		suite.True(read.Online)
	})
	suite.Run("failure - duplicate name", func() {
		// arrange
		_, err := suite.nodeStore.CreateNode(context.Background(), "dup", "host", "/ws", "", "", "")
		suite.NoError(err)

		// act
		_, err = suite.nodeStore.CreateNode(context.Background(), "dup", "host", "/ws", "", "", "")

		// assert
		suite.Error(err)
	})
}

func (suite *nodeSQLiteStoreSuite) TestNodeSQLiteStore_UpdateNode() {
	// arrange
	ctx := context.Background()
	_, err := suite.nodeStore.CreateNode(ctx, "update-me", "host", "/ws", "", "", "")
	suite.NoError(err)

	// act
	err1 := suite.nodeStore.UpdateNode(ctx, "update-me", "host-2", "/ws2", "ci", "hash", "updated")
	err2 := suite.nodeStore.UpdateNodeOnline(ctx, "update-me", false)

	// assert
	suite.NoError(err1)
	suite.NoError(err2)
	n, err := suite.nodeStore.ReadNodeByName(ctx, "update-me")
	suite.NoError(err)
	suite.Equal("host-2", n.Hostname)
	suite.Equal("/ws2", n.Workspace)
	suite.Equal("ci", n.Username)
	suite.False(n.Online)
}

func (suite *nodeSQLiteStoreSuite) TestNodeSQLiteStore_DeleteNode() {
	// arrange
	ctx := context.Background()
	_, err := suite.nodeStore.CreateNode(ctx, "delete-me", "host", "/ws", "", "", "")
	suite.NoError(err)

	// act
	err = suite.nodeStore.DeleteNode(ctx, "delete-me")

	// assert
	suite.NoError(err)
	_, err = suite.nodeStore.ReadNodeByName(ctx, "delete-me")
	suite.ErrorIs(err, sql.ErrNoRows)
}

func (suite *nodeSQLiteStoreSuite) TestBuildSQLiteStore_Lifecycle() {
	// arrange
	ctx := context.Background()
	rec, err := NewProjectRecord(multibranch.NewProject("builds", steps.Default, nil))
	suite.NoError(err)
	suite.NoError(NewProjectSQLiteStore(suite.db, suite.db).UpsertProject(ctx, rec))
	b := &Build{
		BuildID:       uuid.NewString(),
		JobName:       "feature-x",
		NodeName:      internal.ControllerNodeName,
		WorkspacePath: "/ws/builds/feature-x",
		HeadName:      "feature/x",
		Status:        StatusRunning,
		StartedOn:     time.Now().UTC(),
	}

	// act
	err = suite.buildStore.CreateBuild(ctx, "builds", b)
	suite.NoError(err)
	err = suite.buildStore.UpdateBuildEnded(ctx, b.BuildID, StatusPassed, time.Now().UTC())

	// assert
	suite.NoError(err)
	suite.Equal(rec.ProjectID, b.BuildProjectID)
	read, err := suite.buildStore.ReadBuildByID(ctx, b.BuildID)
	suite.NoError(err)
	suite.Equal(StatusPassed, read.Status)
	suite.NotNil(read.EndedOn)
	builds, err := suite.buildStore.ListJobBuilds(ctx, "builds", "feature-x")
	suite.NoError(err)
	suite.Len(builds, 1)
}
