package mullvad

import "context"

// Client is the relay-provider gateway used by the reconciler.
type Client interface {
	// Relays downloads the WireGuard relay catalog.
	Relays(ctx context.Context) (*Catalog, error)
	// Authorize registers a WireGuard public key (standard base64) with the
	// account and returns its masquerade addresses.
	Authorize(ctx context.Context, publicKey string) (MasqueradeAddrs, error)
}
