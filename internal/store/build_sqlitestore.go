package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

type BuildSQLiteStore struct {
	rdb, rwdb *sql.DB
}

func NewBuildSQLiteStore(rdb, rwdb *sql.DB) *BuildSQLiteStore {
	return &BuildSQLiteStore{rdb, rwdb}
}

func (store *BuildSQLiteStore) CreateBuild(ctx context.Context, project string, b *Build) error {
	query := `insert into builds (
		build_id,
		build_project_id,
		job_name,
		node_name,
		workspace_path,
		head_name,
		status,
		started_on
	)
	select $1, project_id, $2, $3, $4, $5, $6, $7
	from projects where name = $8
	returning build_project_id`
	return sqlscan.Get(
		ctx, store.rwdb, b, query,
		b.BuildID,
		b.JobName,
		b.NodeName,
		b.WorkspacePath,
		b.HeadName,
		b.Status,
		b.StartedOn,
		project,
	)
}

func (store *BuildSQLiteStore) ReadBuildByID(ctx context.Context, id string) (*Build, error) {
	b := new(Build)
	query := "select * from builds where build_id = $1"
	if err := sqlscan.Get(ctx, store.rdb, b, query, id); err != nil {
		return nil, err
	}
	return b, nil
}

func (store *BuildSQLiteStore) UpdateBuildEnded(
	ctx context.Context,
	id string,
	status BuildStatus,
	endedOn time.Time,
) error {
	query := `update builds
	set status = $1,
		ended_on = $2
	where build_id = $3`
	_, err := store.rwdb.ExecContext(ctx, query, status, endedOn, id)
	return err
}

func (store *BuildSQLiteStore) ListJobBuilds(ctx context.Context, project, job string) ([]*Build, error) {
	query := `select builds.* from builds
	join projects on projects.project_id = builds.build_project_id
	where projects.name = $1 and builds.job_name = $2
	order by builds.started_on desc`
	builds := make([]*Build, 0)
	err := sqlscan.Select(ctx, store.rdb, &builds, query, project, job)
	return builds, err
}
