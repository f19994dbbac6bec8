package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/haatos/freestyle-multibranch/internal/criteria"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/steps"
	"github.com/stretchr/testify/suite"
)

type projectSQLiteStoreSuite struct {
	projectStore   *ProjectSQLiteStore
	branchJobStore *BranchJobSQLiteStore
	db             *sql.DB
	suite.Suite
}

func TestProjectSQLiteStore(t *testing.T) {
	suite.Run(t, new(projectSQLiteStoreSuite))
}

func (suite *projectSQLiteStoreSuite) SetupSuite() {
	suite.db = openTestDatabase()
	suite.projectStore = NewProjectSQLiteStore(suite.db, suite.db)
	suite.branchJobStore = NewBranchJobSQLiteStore(suite.db, suite.db)
}

func (suite *projectSQLiteStoreSuite) TearDownSuite() {
	_ = suite.db.Close()
}

func (suite *projectSQLiteStoreSuite) generateProject(name string) *multibranch.Project {
	p := multibranch.NewProject(name, steps.Default, nil)
	p.SetDescription("project " + name)
	p.SetCriteria(criteria.NewMarkerFile("marker.txt"))
	suite.NoError(p.NewProjectFactory().ReplaceAll(
		context.Background(),
		[]steps.Step{&steps.TimeoutWrapper{Minutes: 15}},
		[]steps.Step{&steps.ShellBuilder{Script: "make"}},
		[]steps.Step{&steps.ArtifactPublisher{Pattern: "dist/**"}},
	))
	return p
}

func (suite *projectSQLiteStoreSuite) TestProjectSQLiteStore_UpsertProject() {
	suite.Run("success - project inserted and restored", func() {
		// arrange
		p := suite.generateProject("upsert-insert")
		rec, err := NewProjectRecord(p)
		suite.NoError(err)

		// act
		err = suite.projectStore.UpsertProject(context.Background(), rec)

		// assert
		suite.NoError(err)
		suite.NotZero(rec.ProjectID)
		read, err := suite.projectStore.ReadProjectByName(context.Background(), "upsert-insert")
		suite.NoError(err)
		suite.Equal(internalProjectKind(), read.Kind)
		restored, err := read.Restore(context.Background(), steps.Default, nil)
		suite.NoError(err)
		suite.Equal("project upsert-insert", restored.Description())
		suite.Equal(criteria.MarkerFile{FileName: "marker.txt"}, restored.Criteria())
		snap, err := restored.NewProjectFactory().Template().Snapshot()
		suite.NoError(err)
		suite.Equal([]steps.Step{&steps.ShellBuilder{Script: "make"}}, snap.Builders)
		suite.Equal([]steps.Step{&steps.TimeoutWrapper{Minutes: 15}}, snap.Wrappers)
	})
	suite.Run("success - second upsert updates in place", func() {
		// arrange
		p := suite.generateProject("upsert-update")
		rec, err := NewProjectRecord(p)
		suite.NoError(err)
		suite.NoError(suite.projectStore.UpsertProject(context.Background(), rec))
		firstID := rec.ProjectID
		p.SetCriteria(nil)
		rec, err = NewProjectRecord(p)
		suite.NoError(err)

		// act
		err = suite.projectStore.UpsertProject(context.Background(), rec)

		// assert
		suite.NoError(err)
		suite.Equal(firstID, rec.ProjectID)
		read, err := suite.projectStore.ReadProjectByName(context.Background(), "upsert-update")
		suite.NoError(err)
		suite.Equal(criteria.TagAll, read.CriteriaTag)
	})
	suite.Run("failure - unknown kind rejected", func() {
		// arrange
		rec := &Project{Kind: "hudson.model.FreeStyleProject", Name: "unknown-kind"}

		// act
		err := suite.projectStore.UpsertProject(context.Background(), rec)

		// assert
		var kindErr UnknownKindError
		suite.True(errors.As(err, &kindErr))
		_, err = suite.projectStore.ReadProjectByName(context.Background(), "unknown-kind")
		suite.ErrorIs(err, sql.ErrNoRows)
	})
}

func (suite *projectSQLiteStoreSuite) TestProjectSQLiteStore_ReadProjectByName() {
	suite.Run("failure - row with foreign kind is refused", func() {
		// arrange
		_, err := suite.db.Exec(
			"insert into projects (kind, name) values ($1, $2)",
			"pipeline", "foreign-kind",
		)
		suite.NoError(err)

		// act
		p, err := suite.projectStore.ReadProjectByName(context.Background(), "foreign-kind")

		// assert
		suite.Nil(p)
		var kindErr UnknownKindError
		suite.True(errors.As(err, &kindErr))
		suite.Equal("pipeline", kindErr.Kind)
		suite.NoError(suite.projectStore.DeleteProject(context.Background(), "foreign-kind"))
	})
}

func (suite *projectSQLiteStoreSuite) TestProjectSQLiteStore_ListProjects() {
	// arrange
	for _, name := range []string{"list-b", "list-a"} {
		rec, err := NewProjectRecord(suite.generateProject(name))
		suite.NoError(err)
		suite.NoError(suite.projectStore.UpsertProject(context.Background(), rec))
	}

	// act
	projects, err := suite.projectStore.ListProjects(context.Background())

	// assert
	suite.NoError(err)
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	suite.Subset(names, []string{"list-a", "list-b"})
}

func (suite *projectSQLiteStoreSuite) TestBranchJobSQLiteStore_UpsertBranchJob() {
	suite.Run("success - job stored, restored and deleted", func() {
		// arrange
		ctx := context.Background()
		p := suite.generateProject("jobs")
		rec, err := NewProjectRecord(p)
		suite.NoError(err)
		suite.NoError(suite.projectStore.UpsertProject(ctx, rec))
		f := p.NewProjectFactory()
		b := scm.NewBranch(
			"feature/x",
			scm.Head{Name: "feature/x", Kind: scm.HeadBranch},
			scm.Binding{Kind: "git", Remote: "https://example.com/repo.git"},
			scm.Property{Name: "owner", Value: "team-a"},
		)
		job, err := f.NewInstance(b)
		suite.NoError(err)
		jobRec, err := NewBranchJobRecord(job)
		suite.NoError(err)

		// act
		err = suite.branchJobStore.UpsertBranchJob(ctx, "jobs", jobRec)

		// assert
		suite.NoError(err)
		suite.Equal(rec.ProjectID, jobRec.BranchJobProjectID)
		read, err := suite.branchJobStore.ReadBranchJob(ctx, "jobs", "feature-x")
		suite.NoError(err)
		restored, err := read.Restore(f)
		suite.NoError(err)
		suite.Equal("feature-x", restored.Name())
		suite.True(restored.Branch().Equal(b))
		suite.Equal(job.Builders(), restored.Builders())

		suite.NoError(suite.branchJobStore.DeleteBranchJob(ctx, "jobs", "feature-x"))
		jobs, err := suite.branchJobStore.ListBranchJobs(ctx, "jobs")
		suite.NoError(err)
		suite.Empty(jobs)
	})
	suite.Run("failure - missing project", func() {
		// arrange
		p := suite.generateProject("not-stored")
		job, err := p.NewProjectFactory().NewInstance(scm.NewBranch("master", scm.Head{Name: "master"}, scm.Binding{Kind: "git"}))
		suite.NoError(err)
		jobRec, err := NewBranchJobRecord(job)
		suite.NoError(err)

		// act
		err = suite.branchJobStore.UpsertBranchJob(context.Background(), "not-stored", jobRec)

		// assert
		suite.ErrorIs(err, sql.ErrNoRows)
	})
	suite.Run("success - deleting project removes its jobs", func() {
		// arrange
		ctx := context.Background()
		p := suite.generateProject("cascade")
		rec, err := NewProjectRecord(p)
		suite.NoError(err)
		suite.NoError(suite.projectStore.UpsertProject(ctx, rec))
		job, err := p.NewProjectFactory().NewInstance(scm.NewBranch("master", scm.Head{Name: "master"}, scm.Binding{Kind: "git"}))
		suite.NoError(err)
		jobRec, err := NewBranchJobRecord(job)
		suite.NoError(err)
		suite.NoError(suite.branchJobStore.UpsertBranchJob(ctx, "cascade", jobRec))

		// act
		err = suite.projectStore.DeleteProject(ctx, "cascade")

		// assert
		suite.NoError(err)
		jobs, err := suite.branchJobStore.ListBranchJobs(ctx, "cascade")
		suite.NoError(err)
		suite.Empty(jobs)
	})
}

func internalProjectKind() string {
	kind, _ := ProjectKind()
	return kind
}
