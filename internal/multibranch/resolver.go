package multibranch

import (
	"context"
	"path"

	"github.com/haatos/freestyle-multibranch/internal/workspace"
)

// Node is an execution node able to host project workspaces.
type Node interface {
	Name() string
	// WorkspaceFor returns the workspace root of the named project, or false
	// when the node is offline.
	WorkspaceFor(project string) (string, bool)
}

// WorkspacePath is the directory of job under parent.
func WorkspacePath(parent string, job *BranchJob) string {
	return path.Join(parent, job.Name())
}

// DecideWorkspace leases the job's directory under the project workspace on
// node, waiting for an earlier build of the same job on that node to finish.
func DecideWorkspace(ctx context.Context, node Node, list *workspace.List, job *BranchJob) (*workspace.Lease, error) {
	parent, ok := node.WorkspaceFor(job.Project().Name())
	if !ok {
		return nil, NewNodeDisconnectedError(node.Name())
	}
	return list.Allocate(ctx, node.Name(), WorkspacePath(parent, job))
}
