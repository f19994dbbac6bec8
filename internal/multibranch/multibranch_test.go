package multibranch

import (
	"context"
	"errors"
	"sync"

	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/steps"
)

type recordingPersister struct {
	mu          sync.Mutex
	projectSave int
	jobSaves    map[string]int
	err         error
}

func newRecordingPersister() *recordingPersister {
	return &recordingPersister{jobSaves: make(map[string]int)}
}

func (r *recordingPersister) SaveProject(context.Context, *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projectSave++
	return r.err
}

func (r *recordingPersister) SaveBranchJob(_ context.Context, job *BranchJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobSaves[job.Name()]++
	return r.err
}

func (r *recordingPersister) totalJobSaves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.jobSaves {
		total += n
	}
	return total
}

var errDiskFull = errors.New("disk full")

func generateBranch(name string) scm.Branch {
	return scm.NewBranch(
		name,
		scm.Head{Name: name, Kind: scm.HeadBranch},
		scm.Binding{Kind: "git", Remote: "https://example.com/repo.git", Ref: "refs/heads/" + name},
	)
}

func generateProject(persister Persister) (*Project, *Factory) {
	p := NewProject("repo", steps.Default, persister)
	return p, p.NewProjectFactory()
}
