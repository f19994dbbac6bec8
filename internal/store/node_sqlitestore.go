package store

import (
	"context"
	"database/sql"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/haatos/freestyle-multibranch/internal"
)

type NodeSQLiteStore struct {
	rdb, rwdb *sql.DB
}

func NewNodeSQLiteStore(rdb, rwdb *sql.DB) *NodeSQLiteStore {
	return &NodeSQLiteStore{rdb, rwdb}
}

// CreateControllerNode registers the local machine as a node using
// workspace as its workspace root.
func (store *NodeSQLiteStore) CreateControllerNode(ctx context.Context, workspace string) (*Node, error) {
	return store.CreateNode(
		ctx,
		internal.ControllerNodeName,
		"localhost",
		workspace,
		"",
		"",
		"Node running builds on the controller machine.",
	)
}

func (store *NodeSQLiteStore) CreateNode(
	ctx context.Context,
	name, hostname, workspace, username, keyHash, description string,
) (*Node, error) {
	n := &Node{
		Name:              name,
		Hostname:          hostname,
		Workspace:         workspace,
		Username:          username,
		SSHPrivateKeyHash: keyHash,
		Online:            true,
		Description:       description,
	}
	query := `insert into nodes (
		name,
		hostname,
		workspace,
		username,
		ssh_private_key_hash,
		online,
		description
	)
	values ($1, $2, $3, $4, $5, $6, $7)
	returning node_id`
	err := sqlscan.Get(
		ctx, store.rwdb, n, query,
		n.Name,
		n.Hostname,
		n.Workspace,
		n.Username,
		n.SSHPrivateKeyHash,
		n.Online,
		n.Description,
	)
	return n, err
}

func (store *NodeSQLiteStore) ReadNodeByName(ctx context.Context, name string) (*Node, error) {
	n := new(Node)
	query := "select * from nodes where name = $1"
	if err := sqlscan.Get(ctx, store.rdb, n, query, name); err != nil {
		return nil, err
	}
	return n, nil
}

func (store *NodeSQLiteStore) UpdateNode(
	ctx context.Context,
	name, hostname, workspace, username, keyHash, description string,
) error {
	query := `update nodes
	set hostname = $1,
		workspace = $2,
		username = $3,
		ssh_private_key_hash = $4,
		description = $5
	where name = $6`
	_, err := store.rwdb.ExecContext(
		ctx, query,
		hostname,
		workspace,
		username,
		keyHash,
		description,
		name,
	)
	return err
}

func (store *NodeSQLiteStore) UpdateNodeOnline(ctx context.Context, name string, online bool) error {
	query := "update nodes set online = $1 where name = $2"
	_, err := store.rwdb.ExecContext(ctx, query, online, name)
	return err
}

func (store *NodeSQLiteStore) DeleteNode(ctx context.Context, name string) error {
	query := "delete from nodes where name = $1"
	_, err := store.rwdb.ExecContext(ctx, query, name)
	return err
}

func (store *NodeSQLiteStore) ListNodes(ctx context.Context) ([]*Node, error) {
	query := "select * from nodes order by name"
	nodes := make([]*Node, 0)
	err := sqlscan.Select(ctx, store.rdb, &nodes, query)
	return nodes, err
}
