package store

import (
	"context"
	"time"
)

type Node struct {
	NodeID            int64
	Name              string
	Hostname          string
	Workspace         string
	Username          string
	SSHPrivateKeyHash string
	Online            bool
	Description       string
}

type NodeStore interface {
	CreateNode(ctx context.Context, name, hostname, workspace, username, keyHash, description string) (*Node, error)
	ReadNodeByName(context.Context, string) (*Node, error)
	UpdateNode(ctx context.Context, name, hostname, workspace, username, keyHash, description string) error
	UpdateNodeOnline(context.Context, string, bool) error
	DeleteNode(context.Context, string) error
	ListNodes(context.Context) ([]*Node, error)
}

type BuildStatus string

const (
	StatusRunning   BuildStatus = "running"
	StatusCancelled BuildStatus = "cancelled"
	StatusFailed    BuildStatus = "failed"
	StatusPassed    BuildStatus = "passed"
)

type Build struct {
	BuildID        string
	BuildProjectID int64
	JobName        string
	NodeName       string
	WorkspacePath  string
	HeadName       string
	Status         BuildStatus
	StartedOn      time.Time
	EndedOn        *time.Time
}

type BuildStore interface {
	CreateBuild(ctx context.Context, project string, b *Build) error
	ReadBuildByID(context.Context, string) (*Build, error)
	UpdateBuildEnded(context.Context, string, BuildStatus, time.Time) error
	ListJobBuilds(ctx context.Context, project, job string) ([]*Build, error)
}
