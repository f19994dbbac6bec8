package store

import (
	"context"
	"database/sql"

	"github.com/georgysavva/scany/v2/sqlscan"
)

type ProjectSQLiteStore struct {
	rdb, rwdb *sql.DB
}

func NewProjectSQLiteStore(rdb, rwdb *sql.DB) *ProjectSQLiteStore {
	return &ProjectSQLiteStore{rdb, rwdb}
}

func (store *ProjectSQLiteStore) UpsertProject(ctx context.Context, p *Project) error {
	if err := checkKind(p.Kind, ProjectKind); err != nil {
		return err
	}
	query := `insert into projects (
		kind,
		name,
		description,
		criteria_tag,
		criteria_form,
		wrappers,
		builders,
		publishers
	)
	values ($1, $2, $3, $4, $5, $6, $7, $8)
	on conflict (name) do update
	set kind = excluded.kind,
		description = excluded.description,
		criteria_tag = excluded.criteria_tag,
		criteria_form = excluded.criteria_form,
		wrappers = excluded.wrappers,
		builders = excluded.builders,
		publishers = excluded.publishers,
		updated_on = current_timestamp
	returning project_id, created_on, updated_on`
	return sqlscan.Get(
		ctx, store.rwdb, p, query,
		p.Kind,
		p.Name,
		p.Description,
		p.CriteriaTag,
		p.CriteriaForm,
		p.Wrappers,
		p.Builders,
		p.Publishers,
	)
}

func (store *ProjectSQLiteStore) ReadProjectByName(ctx context.Context, name string) (*Project, error) {
	p := new(Project)
	query := "select * from projects where name = $1"
	if err := sqlscan.Get(ctx, store.rdb, p, query, name); err != nil {
		return nil, err
	}
	if err := checkKind(p.Kind, ProjectKind); err != nil {
		return nil, err
	}
	return p, nil
}

func (store *ProjectSQLiteStore) ListProjects(ctx context.Context) ([]*Project, error) {
	if _, err := ProjectKind(); err != nil {
		return nil, err
	}
	query := "select * from projects order by name"
	projects := make([]*Project, 0)
	if err := sqlscan.Select(ctx, store.rdb, &projects, query); err != nil {
		return nil, err
	}
	for _, p := range projects {
		if err := checkKind(p.Kind, ProjectKind); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (store *ProjectSQLiteStore) DeleteProject(ctx context.Context, name string) error {
	query := "delete from projects where name = $1"
	_, err := store.rwdb.ExecContext(ctx, query, name)
	return err
}

type BranchJobSQLiteStore struct {
	rdb, rwdb *sql.DB
}

func NewBranchJobSQLiteStore(rdb, rwdb *sql.DB) *BranchJobSQLiteStore {
	return &BranchJobSQLiteStore{rdb, rwdb}
}

// UpsertBranchJob writes j under the project called project, which must
// already exist.
func (store *BranchJobSQLiteStore) UpsertBranchJob(ctx context.Context, project string, j *BranchJob) error {
	if err := checkKind(j.Kind, BranchJobKind); err != nil {
		return err
	}
	query := `insert into branch_jobs (
		branch_job_project_id,
		kind,
		name,
		branch,
		disabled,
		properties,
		wrappers,
		builders,
		publishers
	)
	select project_id, $1, $2, $3, $4, $5, $6, $7, $8
	from projects where name = $9
	on conflict (branch_job_project_id, name) do update
	set kind = excluded.kind,
		branch = excluded.branch,
		disabled = excluded.disabled,
		properties = excluded.properties,
		wrappers = excluded.wrappers,
		builders = excluded.builders,
		publishers = excluded.publishers,
		updated_on = current_timestamp
	returning branch_job_id, branch_job_project_id, updated_on`
	return sqlscan.Get(
		ctx, store.rwdb, j, query,
		j.Kind,
		j.Name,
		j.Branch,
		j.Disabled,
		j.Properties,
		j.Wrappers,
		j.Builders,
		j.Publishers,
		project,
	)
}

func (store *BranchJobSQLiteStore) ReadBranchJob(ctx context.Context, project, name string) (*BranchJob, error) {
	j := new(BranchJob)
	query := `select branch_jobs.* from branch_jobs
	join projects on projects.project_id = branch_jobs.branch_job_project_id
	where projects.name = $1 and branch_jobs.name = $2`
	if err := sqlscan.Get(ctx, store.rdb, j, query, project, name); err != nil {
		return nil, err
	}
	if err := checkKind(j.Kind, BranchJobKind); err != nil {
		return nil, err
	}
	return j, nil
}

func (store *BranchJobSQLiteStore) ListBranchJobs(ctx context.Context, project string) ([]*BranchJob, error) {
	if _, err := BranchJobKind(); err != nil {
		return nil, err
	}
	query := `select branch_jobs.* from branch_jobs
	join projects on projects.project_id = branch_jobs.branch_job_project_id
	where projects.name = $1
	order by branch_jobs.name`
	jobs := make([]*BranchJob, 0)
	if err := sqlscan.Select(ctx, store.rdb, &jobs, query, project); err != nil {
		return nil, err
	}
	for _, j := range jobs {
		if err := checkKind(j.Kind, BranchJobKind); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

func (store *BranchJobSQLiteStore) DeleteBranchJob(ctx context.Context, project, name string) error {
	query := `delete from branch_jobs
	where name = $1
	and branch_job_project_id = (select project_id from projects where name = $2)`
	_, err := store.rwdb.ExecContext(ctx, query, name, project)
	return err
}
