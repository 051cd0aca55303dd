package headscale

import "context"

// MockClient is a Client whose behavior is set per method. Unset methods
// return zero values.
type MockClient struct {
	StateFunc            func(ctx context.Context) (*State, error)
	RegisterPeerFunc     func(ctx context.Context, req RegisterPeerRequest) error
	DeletePeerFunc       func(ctx context.Context, id ID) error
	CreateConnectionFunc func(ctx context.Context, req CreateConnectionRequest) error
	DeleteConnectionFunc func(ctx context.Context, node, peer ID) error
	ListUsersFunc        func(ctx context.Context) ([]User, error)
	UserByNameFunc       func(ctx context.Context, name string) (*User, error)
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) State(ctx context.Context) (*State, error) {
	if m.StateFunc != nil {
		return m.StateFunc(ctx)
	}
	return &State{}, nil
}

func (m *MockClient) RegisterPeer(ctx context.Context, req RegisterPeerRequest) error {
	if m.RegisterPeerFunc != nil {
		return m.RegisterPeerFunc(ctx, req)
	}
	return nil
}

func (m *MockClient) DeletePeer(ctx context.Context, id ID) error {
	if m.DeletePeerFunc != nil {
		return m.DeletePeerFunc(ctx, id)
	}
	return nil
}

func (m *MockClient) CreateConnection(ctx context.Context, req CreateConnectionRequest) error {
	if m.CreateConnectionFunc != nil {
		return m.CreateConnectionFunc(ctx, req)
	}
	return nil
}

func (m *MockClient) DeleteConnection(ctx context.Context, node, peer ID) error {
	if m.DeleteConnectionFunc != nil {
		return m.DeleteConnectionFunc(ctx, node, peer)
	}
	return nil
}

func (m *MockClient) ListUsers(ctx context.Context) ([]User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return nil, nil
}

func (m *MockClient) UserByName(ctx context.Context, name string) (*User, error) {
	if m.UserByNameFunc != nil {
		return m.UserByNameFunc(ctx, name)
	}
	return nil, nil
}
