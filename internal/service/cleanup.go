package service

import (
	"context"
	"log"
	"path"
	"path/filepath"

	"github.com/haatos/freestyle-multibranch/internal"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/util"
	"github.com/haatos/freestyle-multibranch/internal/workspace"
)

// WorkspaceCleaner removes branch workspaces on the controller node that no
// longer belong to a job.
type WorkspaceCleaner struct {
	projectService ProjectServicer
	workspaces     *workspace.List
	root           string
}

func NewWorkspaceCleaner(ps ProjectServicer, workspaces *workspace.List, root string) *WorkspaceCleaner {
	return &WorkspaceCleaner{projectService: ps, workspaces: workspaces, root: root}
}

// Cleanup returns the removed directories. Leased directories are kept.
// Each project is swept under its reconcile lock and every directory is
// leased while it is removed, so no build can start in it meanwhile.
func (c *WorkspaceCleaner) Cleanup(ctx context.Context) ([]string, error) {
	projects, err := c.projectService.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0)
	for _, p := range projects {
		swept, err := c.sweep(p)
		removed = append(removed, swept...)
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (c *WorkspaceCleaner) sweep(p *multibranch.Project) ([]string, error) {
	unlock := c.projectService.LockProject(p.Name())
	defer unlock()

	parent := path.Join(c.root, util.ProjectDir(p.Name()))
	dirs, err := util.ListSubdirectories(filepath.FromSlash(parent))
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0)
	for _, dir := range dirs {
		if _, ok := p.Item(dir); ok {
			continue
		}
		wsPath := path.Join(parent, dir)
		lease, ok := c.workspaces.TryAllocate(internal.ControllerNodeName, wsPath)
		if !ok {
			continue
		}
		err := util.RemoveChild(filepath.FromSlash(parent), dir)
		lease.Release()
		if err != nil {
			log.Printf("err removing workspace %s: %+v\n", wsPath, err)
			continue
		}
		removed = append(removed, wsPath)
	}
	return removed, nil
}
