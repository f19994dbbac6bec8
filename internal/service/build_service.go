package service

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/store"
	"github.com/haatos/freestyle-multibranch/internal/workspace"
)

type BuildServicer interface {
	StartBuild(ctx context.Context, project, job, node string) (*RunningBuild, error)
	FinishBuild(ctx context.Context, buildID string, passed bool) error
	CancelBuild(ctx context.Context, buildID string) error
	RunningBuilds() []*RunningBuild
	ListJobBuilds(ctx context.Context, project, job string) ([]*store.Build, error)
}

// RunningBuild is a started build holding its workspace lease. Branch is the
// value captured when the workspace was resolved.
type RunningBuild struct {
	Build  *store.Build     `json:"build"`
	Branch scm.Branch       `json:"branch"`
	Lease  *workspace.Lease `json:"lease"`
}

type BuildService struct {
	projectService ProjectServicer
	nodeService    NodeServicer
	buildStore     store.BuildStore
	workspaces     *workspace.List
	leaseWait      time.Duration

	mu      sync.Mutex
	running map[string]*RunningBuild
}

func NewBuildService(
	ps ProjectServicer,
	ns NodeServicer,
	bs store.BuildStore,
	workspaces *workspace.List,
	leaseWait time.Duration,
) *BuildService {
	return &BuildService{
		projectService: ps,
		nodeService:    ns,
		buildStore:     bs,
		workspaces:     workspaces,
		leaseWait:      leaseWait,
		running:        make(map[string]*RunningBuild),
	}
}

// StartBuild resolves the job's workspace on node and records the build. It
// blocks while another build of the same job holds the workspace on node.
func (s *BuildService) StartBuild(ctx context.Context, project, job, node string) (*RunningBuild, error) {
	j, err := s.projectService.GetJob(ctx, project, job)
	if err != nil {
		return nil, err
	}
	if !j.IsBuildable() {
		return nil, multibranch.ErrNotBuildable
	}
	n, err := s.nodeService.ResolveNode(ctx, node)
	if err != nil {
		return nil, err
	}

	leaseCtx := ctx
	if s.leaseWait > 0 {
		var cancel context.CancelFunc
		leaseCtx, cancel = context.WithTimeout(ctx, s.leaseWait)
		defer cancel()
	}
	lease, err := multibranch.DecideWorkspace(leaseCtx, n, s.workspaces, j)
	if err != nil {
		return nil, err
	}
	branch := j.Branch()

	b := &store.Build{
		BuildID:       uuid.NewString(),
		JobName:       j.Name(),
		NodeName:      n.Name(),
		WorkspacePath: lease.Path,
		HeadName:      branch.Head.Name,
		Status:        store.StatusRunning,
		StartedOn:     time.Now().UTC(),
	}
	if err := s.buildStore.CreateBuild(ctx, project, b); err != nil {
		lease.Release()
		return nil, err
	}

	rb := &RunningBuild{Build: b, Branch: branch, Lease: lease}
	s.mu.Lock()
	s.running[b.BuildID] = rb
	s.mu.Unlock()
	return rb, nil
}

func (s *BuildService) FinishBuild(ctx context.Context, buildID string, passed bool) error {
	status := store.StatusFailed
	if passed {
		status = store.StatusPassed
	}
	return s.end(ctx, buildID, status)
}

// CancelBuild ends the build as cancelled and releases its workspace.
func (s *BuildService) CancelBuild(ctx context.Context, buildID string) error {
	return s.end(ctx, buildID, store.StatusCancelled)
}

func (s *BuildService) end(ctx context.Context, buildID string, status store.BuildStatus) error {
	s.mu.Lock()
	rb, ok := s.running[buildID]
	delete(s.running, buildID)
	s.mu.Unlock()
	if !ok {
		return ErrBuildNotRunning
	}
	rb.Lease.Release()

	endedOn := time.Now().UTC()
	rb.Build.Status = status
	rb.Build.EndedOn = &endedOn
	if err := s.buildStore.UpdateBuildEnded(ctx, buildID, status, endedOn); err != nil {
		log.Printf("err updating build %s: %+v\n", buildID, err)
		return err
	}
	return nil
}

func (s *BuildService) RunningBuilds() []*RunningBuild {
	s.mu.Lock()
	defer s.mu.Unlock()
	builds := make([]*RunningBuild, 0, len(s.running))
	for _, rb := range s.running {
		builds = append(builds, rb)
	}
	sort.Slice(builds, func(i, j int) bool {
		return builds[i].Build.StartedOn.Before(builds[j].Build.StartedOn)
	})
	return builds
}

func (s *BuildService) ListJobBuilds(ctx context.Context, project, job string) ([]*store.Build, error) {
	return s.buildStore.ListJobBuilds(ctx, project, job)
}
