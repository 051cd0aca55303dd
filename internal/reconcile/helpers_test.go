package reconcile

import (
	"context"
	"sync"
	"testing"

	"github.com/go-logr/logr"

	"github.com/imamik/hsmv/internal/platform/headscale"
	"github.com/imamik/hsmv/internal/platform/mullvad"
)

const (
	keySeSto = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
	keyDeFra = "ICEiIyQlJicoKSorLC0uLzAxMjM0NTY3ODk6Ozw9Pj8="
	keyUsNyc = "QEFCQ0RFRkdISUpLTE1OT1BRUlNUVVZXWFlaW1xdXl8="

	nodeKeySeSto  = "nodekey:000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	nodeKeyLaptop = "nodekey:404142434445464748494a4b4c4d4e4f505152535455565758595a5b5c5d5e5f"
)

func testCatalog() *mullvad.Catalog {
	return &mullvad.Catalog{Countries: []mullvad.Country{
		{Name: "Sweden", Code: "se", Cities: []mullvad.City{{
			Name: "Stockholm", Code: "sto", Latitude: 59.3, Longitude: 18.0,
			Relays: []mullvad.RelayEntry{{
				Hostname: "se-sto-wg-001", PublicKey: keySeSto,
				IPv4AddrIn: "185.65.135.1", IPv6AddrIn: "2a03:1b20:1:f011::a01f",
			}},
		}}},
		{Name: "Germany", Code: "DE", Cities: []mullvad.City{{
			Name: "Frankfurt", Code: "fra",
			Relays: []mullvad.RelayEntry{{
				Hostname: "de-fra-wg-001", PublicKey: keyDeFra, IPv4AddrIn: "185.213.155.1",
			}},
		}}},
	}}
}

func relayPeer(id headscale.ID, hostname, countryCode string) headscale.Peer {
	extra, _ := headscale.ExtraConfig{
		SuggestExitNode: true,
		Location:        headscale.Location{CountryCode: countryCode},
	}.Encode()
	return headscale.Peer{ID: id, Name: "mv-" + hostname, ExtraConfig: extra}
}

// fakeHeadscale is an in-memory coordinator recording mutations.
type fakeHeadscale struct {
	mu         sync.Mutex
	state      headscale.State
	users      []headscale.User
	registered []headscale.RegisterPeerRequest
	created    []headscale.CreateConnectionRequest
	deletedC   []headscale.Connection
	deletedP   []headscale.ID
	// calls records the mutation order as "peer:<id>" / "conn:<node>-<peer>".
	calls []string
	fail  map[string]error
}

func (f *fakeHeadscale) client() *headscale.MockClient {
	return &headscale.MockClient{
		StateFunc: func(ctx context.Context) (*headscale.State, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			s := headscale.State{
				Nodes:       append([]headscale.Node(nil), f.state.Nodes...),
				Peers:       append([]headscale.Peer(nil), f.state.Peers...),
				Connections: append([]headscale.Connection(nil), f.state.Connections...),
			}
			return &s, nil
		},
		RegisterPeerFunc: func(ctx context.Context, req headscale.RegisterPeerRequest) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			if err := f.fail[req.Name]; err != nil {
				return err
			}
			f.registered = append(f.registered, req)
			f.state.Peers = append(f.state.Peers, headscale.Peer{
				ID:          headscale.ID("new-" + req.Name),
				Name:        req.Name,
				ExtraConfig: req.ExtraConfig,
			})
			return nil
		},
		DeletePeerFunc: func(ctx context.Context, id headscale.ID) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.deletedP = append(f.deletedP, id)
			f.calls = append(f.calls, "peer:"+id.String())
			return nil
		},
		CreateConnectionFunc: func(ctx context.Context, req headscale.CreateConnectionRequest) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.created = append(f.created, req)
			return nil
		},
		DeleteConnectionFunc: func(ctx context.Context, node, peer headscale.ID) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.deletedC = append(f.deletedC, headscale.Connection{NodeID: node, PeerID: peer})
			f.calls = append(f.calls, "conn:"+node.String()+"-"+peer.String())
			return nil
		},
		UserByNameFunc: func(ctx context.Context, name string) (*headscale.User, error) {
			for i := range f.users {
				if f.users[i].Name == name {
					return &f.users[i], nil
				}
			}
			return nil, nil
		},
	}
}

// recordingObserver collects events.
type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) Event(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) WithFields(map[string]string) Observer {
	return o
}

func (o *recordingObserver) ofType(t EventType) []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []Event
	for _, e := range o.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestContext(t *testing.T, hs headscale.Client, mv mullvad.Client) (*Context, *recordingObserver) {
	t.Helper()
	rc := NewContext(context.Background(), hs, mv, logr.Discard())
	obs := &recordingObserver{}
	rc.Observer = obs
	rc.Workers = 4
	return rc, obs
}
