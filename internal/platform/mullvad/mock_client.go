package mullvad

import "context"

// MockClient is a Client whose behavior is set per method.
type MockClient struct {
	RelaysFunc    func(ctx context.Context) (*Catalog, error)
	AuthorizeFunc func(ctx context.Context, publicKey string) (MasqueradeAddrs, error)
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Relays(ctx context.Context) (*Catalog, error) {
	if m.RelaysFunc != nil {
		return m.RelaysFunc(ctx)
	}
	return &Catalog{}, nil
}

func (m *MockClient) Authorize(ctx context.Context, publicKey string) (MasqueradeAddrs, error) {
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, publicKey)
	}
	return MasqueradeAddrs{}, nil
}
