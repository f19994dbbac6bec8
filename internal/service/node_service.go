package service

import (
	"context"
	"io"
	"os"
	"path"

	"github.com/haatos/freestyle-multibranch/internal"
	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/security"
	"github.com/haatos/freestyle-multibranch/internal/store"
	"github.com/haatos/freestyle-multibranch/internal/util"
)

type NodeServicer interface {
	CreateNode(ctx context.Context, name, hostname, workspace, username, privateKey, description string) (*store.Node, error)
	GetNode(context.Context, string) (*store.Node, error)
	ListNodes(context.Context) ([]*store.Node, error)
	UpdateNode(ctx context.Context, name, hostname, workspace, username, privateKey, description string) error
	SetNodeOnline(context.Context, string, bool) error
	DeleteNode(context.Context, string) error

	ResolveNode(context.Context, string) (multibranch.Node, error)
	OpenProbe(ctx context.Context, node string, head scm.Head, root string) (scm.Probe, io.Closer, error)
	TestNodeConnection(context.Context, string) error
}

// NodeHandle exposes a stored node to the workspace resolver. Each project
// gets its own directory under the node's workspace root, see util.ProjectDir.
type NodeHandle struct {
	node store.Node
}

func NewNodeHandle(n *store.Node) *NodeHandle {
	return &NodeHandle{node: *n}
}

func (h *NodeHandle) Name() string {
	return h.node.Name
}

func (h *NodeHandle) WorkspaceFor(project string) (string, bool) {
	if !h.node.Online {
		return "", false
	}
	return path.Join(h.node.Workspace, util.ProjectDir(project)), true
}

type NodeService struct {
	nodeStore store.NodeStore
	encrypter security.Encrypter
	dial      func(hostname, username string, privateKey []byte) (*scm.SFTPConnection, error)
}

func NewNodeService(s store.NodeStore, encrypter security.Encrypter) *NodeService {
	return &NodeService{nodeStore: s, encrypter: encrypter, dial: scm.DialSFTP}
}

func (s *NodeService) CreateNode(
	ctx context.Context,
	name, hostname, workspace, username, privateKey, description string,
) (*store.Node, error) {
	hash := ""
	if privateKey != "" {
		hash = s.encrypter.EncryptAES(privateKey)
	}
	return s.nodeStore.CreateNode(ctx, name, hostname, workspace, username, hash, description)
}

func (s *NodeService) GetNode(ctx context.Context, name string) (*store.Node, error) {
	return s.nodeStore.ReadNodeByName(ctx, name)
}

func (s *NodeService) ListNodes(ctx context.Context) ([]*store.Node, error) {
	return s.nodeStore.ListNodes(ctx)
}

// UpdateNode keeps the stored key when privateKey is empty.
func (s *NodeService) UpdateNode(
	ctx context.Context,
	name, hostname, workspace, username, privateKey, description string,
) error {
	n, err := s.nodeStore.ReadNodeByName(ctx, name)
	if err != nil {
		return err
	}
	hash := n.SSHPrivateKeyHash
	if privateKey != "" {
		hash = s.encrypter.EncryptAES(privateKey)
	}
	return s.nodeStore.UpdateNode(ctx, name, hostname, workspace, username, hash, description)
}

func (s *NodeService) SetNodeOnline(ctx context.Context, name string, online bool) error {
	return s.nodeStore.UpdateNodeOnline(ctx, name, online)
}

func (s *NodeService) DeleteNode(ctx context.Context, name string) error {
	return s.nodeStore.DeleteNode(ctx, name)
}

func (s *NodeService) ResolveNode(ctx context.Context, name string) (multibranch.Node, error) {
	n, err := s.nodeStore.ReadNodeByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return NewNodeHandle(n), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenProbe opens a read-only probe on the checkout at root. The controller
// node reads its local disk, other nodes are reached over SFTP.
func (s *NodeService) OpenProbe(
	ctx context.Context,
	name string,
	head scm.Head,
	root string,
) (scm.Probe, io.Closer, error) {
	n, err := s.nodeStore.ReadNodeByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if !n.Online {
		return nil, nil, multibranch.NewNodeDisconnectedError(n.Name)
	}
	if n.Name == internal.ControllerNodeName {
		return scm.NewFSProbe(head, os.DirFS(root)), nopCloser{}, nil
	}
	conn, err := s.connect(n)
	if err != nil {
		return nil, nil, err
	}
	return scm.NewSFTPProbe(head, conn.SFTP, root), conn, nil
}

func (s *NodeService) TestNodeConnection(ctx context.Context, name string) error {
	n, err := s.nodeStore.ReadNodeByName(ctx, name)
	if err != nil {
		return err
	}
	if n.Name == internal.ControllerNodeName {
		_, err := util.PathExists(n.Workspace)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	conn, err := s.connect(n)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.SFTP.Getwd()
	return err
}

func (s *NodeService) connect(n *store.Node) (*scm.SFTPConnection, error) {
	privateKey, err := s.encrypter.DecryptAES(n.SSHPrivateKeyHash)
	if err != nil {
		return nil, err
	}
	return s.dial(n.Hostname, n.Username, privateKey)
}
