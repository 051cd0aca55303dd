package headscale

import "context"

// Client is the coordinator gateway used by the reconciler.
type Client interface {
	// State returns nodes, WireGuard-only peers and connections in one read.
	State(ctx context.Context) (*State, error)
	RegisterPeer(ctx context.Context, req RegisterPeerRequest) error
	// DeletePeer removes a WireGuard-only peer. A missing peer is not an error.
	DeletePeer(ctx context.Context, id ID) error
	CreateConnection(ctx context.Context, req CreateConnectionRequest) error
	// DeleteConnection removes a connection. A missing connection is not an error.
	DeleteConnection(ctx context.Context, node, peer ID) error
	ListUsers(ctx context.Context) ([]User, error)
	// UserByName returns nil if no user has that name.
	UserByName(ctx context.Context, name string) (*User, error)
}
