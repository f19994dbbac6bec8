package multibranch

import (
	"errors"
	"fmt"
)

var (
	ErrJobExists    = errors.New("a job with this name already exists")
	ErrForeignJob   = errors.New("job belongs to another project")
	ErrJobNotFound  = errors.New("job not found")
	ErrNotBuildable = errors.New("job is not buildable")
)

// NodeDisconnectedError means the node chosen for a build can no longer
// provide a workspace. The build fails and is not retried here.
type NodeDisconnectedError struct {
	Node string
}

func (e NodeDisconnectedError) Error() string {
	return fmt.Sprintf("node %s is no longer connected", e.Node)
}

func NewNodeDisconnectedError(node string) *NodeDisconnectedError {
	return &NodeDisconnectedError{Node: node}
}

// TemplateReplaceError is returned when a bulk template replace fails. The
// template may be partially applied and the project should be saved again.
type TemplateReplaceError struct {
	Project string
	Err     error
}

func (e TemplateReplaceError) Error() string {
	return fmt.Sprintf("replacing template of %s: %v", e.Project, e.Err)
}

func (e TemplateReplaceError) Unwrap() error {
	return e.Err
}

func NewTemplateReplaceError(project string, err error) *TemplateReplaceError {
	return &TemplateReplaceError{Project: project, Err: err}
}

// RebindSaveError is logged when a job cannot be saved after its branch
// changed. The in-memory rebind stands.
type RebindSaveError struct {
	Job string
	Err error
}

func (e RebindSaveError) Error() string {
	return fmt.Sprintf("saving %s after rebind: %v", e.Job, e.Err)
}

func (e RebindSaveError) Unwrap() error {
	return e.Err
}

func NewRebindSaveError(job string, err error) *RebindSaveError {
	return &RebindSaveError{Job: job, Err: err}
}
