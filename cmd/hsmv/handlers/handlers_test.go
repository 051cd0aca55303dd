package handlers

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/hsmv/internal/config"
	"github.com/imamik/hsmv/internal/platform/headscale"
	"github.com/imamik/hsmv/internal/platform/mullvad"
	"github.com/imamik/hsmv/internal/util/async"
)

const (
	keySeSto      = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
	nodeKeyLaptop = "nodekey:404142434445464748494a4b4c4d4e4f505152535455565758595a5b5c5d5e5f"
)

func testConfig() *config.Config {
	return &config.Config{
		HeadscaleURL:    "https://headscale.example.com",
		HeadscaleAPIKey: "hs-key",
		MullvadAccount:  "1234567890123456",
		MaxWorkers:      4,
		Timeouts:        &config.Timeouts{Request: time.Second, Catalog: time.Second, Shutdown: time.Second},
	}
}

// coordinator is an in-memory Headscale used by handler tests.
type coordinator struct {
	mu         sync.Mutex
	state      headscale.State
	users      []headscale.User
	registered []headscale.RegisterPeerRequest
	created    []headscale.CreateConnectionRequest
	deleted    []headscale.ID
}

func (c *coordinator) client() *headscale.MockClient {
	return &headscale.MockClient{
		StateFunc: func(context.Context) (*headscale.State, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			s := c.state
			return &s, nil
		},
		RegisterPeerFunc: func(_ context.Context, req headscale.RegisterPeerRequest) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.registered = append(c.registered, req)
			return nil
		},
		DeletePeerFunc: func(_ context.Context, id headscale.ID) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.deleted = append(c.deleted, id)
			return nil
		},
		CreateConnectionFunc: func(_ context.Context, req headscale.CreateConnectionRequest) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.created = append(c.created, req)
			return nil
		},
		DeleteConnectionFunc: func(context.Context, headscale.ID, headscale.ID) error {
			return nil
		},
		UserByNameFunc: func(_ context.Context, name string) (*headscale.User, error) {
			for _, u := range c.users {
				if u.Name == name {
					return &u, nil
				}
			}
			return nil, nil
		},
	}
}

func relayCatalog() *mullvad.Catalog {
	return &mullvad.Catalog{Countries: []mullvad.Country{{
		Name: "Sweden", Code: "se",
		Cities: []mullvad.City{{
			Name: "Stockholm", Code: "sto",
			Relays: []mullvad.RelayEntry{{
				Hostname: "se-sto-wg-001", PublicKey: keySeSto, IPv4AddrIn: "185.65.135.1",
			}},
		}},
	}}}
}

func relayPeer(id headscale.ID, hostname, country, code string) headscale.Peer {
	extra, _ := headscale.ExtraConfig{
		SuggestExitNode: true,
		Location:        headscale.Location{Country: country, CountryCode: code, City: "Somewhere"},
	}.Encode()
	return headscale.Peer{ID: id, Name: "mv-" + hostname, ExtraConfig: extra, Endpoints: []string{"192.0.2.1:51820"}}
}

// stubDeps replaces every factory for the duration of the test and returns
// the buffer standing in for stdout.
func stubDeps(t *testing.T, cfg *config.Config, hs headscale.Client, mv mullvad.Client) *bytes.Buffer {
	t.Helper()

	origLoad := loadConfig
	origHS := newHeadscaleClient
	origMV := newMullvadClient
	origLogger := newLogger
	origTracker := newTracker
	origConfirm := confirm
	origStdout := stdout
	t.Cleanup(func() {
		loadConfig = origLoad
		newHeadscaleClient = origHS
		newMullvadClient = origMV
		newLogger = origLogger
		newTracker = origTracker
		confirm = origConfirm
		stdout = origStdout
	})

	loadConfig = func(string) (*config.Config, error) { return cfg, nil }
	newHeadscaleClient = func(*config.Config) headscale.Client { return hs }
	newMullvadClient = func(*config.Config) mullvad.Client { return mv }
	newLogger = func(bool) logr.Logger { return logr.Discard() }
	newTracker = func(logr.Logger) async.Tracker { return async.NopTracker{} }
	confirm = func(context.Context, string, string) (bool, error) {
		return false, errors.New("unexpected confirmation prompt")
	}

	buf := &bytes.Buffer{}
	stdout = buf
	return buf
}
