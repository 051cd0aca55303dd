package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hsmv/internal/platform/headscale"
	"github.com/imamik/hsmv/internal/platform/mullvad"
	"github.com/imamik/hsmv/internal/reconcile"
	"github.com/imamik/hsmv/internal/ui"
	"github.com/imamik/hsmv/internal/util/filter"
)

func catalogClient() *mullvad.MockClient {
	return &mullvad.MockClient{
		RelaysFunc: func(context.Context) (*mullvad.Catalog, error) { return relayCatalog(), nil },
	}
}

func TestRelayList_Table(t *testing.T) {
	hs := &coordinator{state: headscale.State{Peers: []headscale.Peer{
		relayPeer("10", "se-sto-wg-001", "Sweden", "se"),
		{ID: "11", Name: "office-gateway"},
	}}}
	out := stubDeps(t, testConfig(), hs.client(), nil)

	require.NoError(t, RelayList(context.Background(), Options{}, "table"))
	assert.Contains(t, out.String(), "se-sto-wg-001")
	assert.NotContains(t, out.String(), "mv-se-sto-wg-001")
	assert.Contains(t, out.String(), "Sweden")
	assert.NotContains(t, out.String(), "office-gateway")
}

func TestRelayList_JSON(t *testing.T) {
	hs := &coordinator{state: headscale.State{Peers: []headscale.Peer{
		relayPeer("10", "se-sto-wg-001", "Sweden", "se"),
	}}}
	out := stubDeps(t, testConfig(), hs.client(), nil)

	require.NoError(t, RelayList(context.Background(), Options{}, "json"))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "mv-se-sto-wg-001", got[0]["name"])
	assert.Equal(t, "se-sto-wg-001", got[0]["hostname"])
}

func TestRelayList_Empty(t *testing.T) {
	hs := &coordinator{}
	out := stubDeps(t, testConfig(), hs.client(), nil)

	require.NoError(t, RelayList(context.Background(), Options{}, ""))
	assert.Contains(t, out.String(), "No Mullvad relays registered")
}

func TestRelayList_InvalidFormat(t *testing.T) {
	hs := &coordinator{}
	stubDeps(t, testConfig(), hs.client(), nil)

	err := RelayList(context.Background(), Options{}, "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestRelayAdd_WithCountries(t *testing.T) {
	hs := &coordinator{users: []headscale.User{{ID: "3", Name: "alice"}}}
	out := stubDeps(t, testConfig(), hs.client(), catalogClient())

	err := RelayAdd(context.Background(), Options{}, RelayAddArgs{
		User:      reconcile.Selector{Name: "alice"},
		Countries: "SE",
	})
	require.NoError(t, err)
	require.Len(t, hs.registered, 1)
	assert.Equal(t, "mv-se-sto-wg-001", hs.registered[0].Name)
	assert.Equal(t, headscale.ID("3"), hs.registered[0].UserID)
	assert.Contains(t, out.String(), "1 relay registrations done")
}

func TestRelayAdd_UnknownUser(t *testing.T) {
	hs := &coordinator{}
	stubDeps(t, testConfig(), hs.client(), catalogClient())

	err := RelayAdd(context.Background(), Options{}, RelayAddArgs{
		User:      reconcile.Selector{Name: "bob"},
		Countries: "se",
	})
	assert.ErrorIs(t, err, reconcile.ErrUserNotFound)
	assert.Empty(t, hs.registered)
}

func TestRelayAdd_RequiresSelector(t *testing.T) {
	hs := &coordinator{}
	stubDeps(t, testConfig(), hs.client(), catalogClient())

	err := RelayAdd(context.Background(), Options{}, RelayAddArgs{Countries: "se"})
	assert.ErrorIs(t, err, reconcile.ErrSelectorRequired)
}

func TestRelayAdd_NonNumericUserID(t *testing.T) {
	hs := &coordinator{}
	stubDeps(t, testConfig(), hs.client(), catalogClient())

	err := RelayAdd(context.Background(), Options{}, RelayAddArgs{
		User:      reconcile.Selector{ID: "abc"},
		Countries: "se",
	})
	assert.ErrorIs(t, err, reconcile.ErrInvalidID)
	assert.Empty(t, hs.registered)
}

func TestRelayAdd_AllCountriesAsksForConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		answer    bool
		wantErr   error
		wantAdded int
	}{
		{"confirmed", true, nil, 1},
		{"declined", false, ui.ErrAborted, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := &coordinator{}
			stubDeps(t, testConfig(), hs.client(), catalogClient())

			var asked string
			confirm = func(_ context.Context, title, _ string) (bool, error) {
				asked = title
				return tt.answer, nil
			}

			err := RelayAdd(context.Background(), Options{}, RelayAddArgs{User: reconcile.Selector{ID: "1"}})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, asked, "may take a while")
			assert.Len(t, hs.registered, tt.wantAdded)
		})
	}
}

func TestRelayAdd_YesSkipsConfirmation(t *testing.T) {
	hs := &coordinator{}
	stubDeps(t, testConfig(), hs.client(), catalogClient())

	err := RelayAdd(context.Background(), Options{}, RelayAddArgs{User: reconcile.Selector{ID: "1"}, Yes: true})
	require.NoError(t, err)
	assert.Len(t, hs.registered, 1)
}

func TestRelayAdd_DryRun(t *testing.T) {
	hs := &coordinator{}
	out := stubDeps(t, testConfig(), hs.client(), catalogClient())

	err := RelayAdd(context.Background(), Options{DryRun: true}, RelayAddArgs{User: reconcile.Selector{ID: "1"}})
	require.NoError(t, err)
	assert.Empty(t, hs.registered)
	assert.Contains(t, out.String(), "Dry run: 1 relay registrations planned")
}

func TestRelayDelete_CountryFilter(t *testing.T) {
	hs := &coordinator{state: headscale.State{Peers: []headscale.Peer{
		relayPeer("10", "se-sto-wg-001", "Sweden", "se"),
		relayPeer("11", "us-nyc-wg-001", "USA", "us"),
	}}}
	stubDeps(t, testConfig(), hs.client(), nil)

	require.NoError(t, RelayDelete(context.Background(), Options{}, RelayDeleteArgs{Countries: "us", CountriesGiven: true}))
	assert.Equal(t, []headscale.ID{"11"}, hs.deleted)
}

func TestRelayDelete_EmptyCountryFilterIsRejected(t *testing.T) {
	for _, raw := range []string{"", ",", " , "} {
		t.Run(fmt.Sprintf("%q", raw), func(t *testing.T) {
			hs := &coordinator{state: headscale.State{Peers: []headscale.Peer{
				relayPeer("10", "se-sto-wg-001", "Sweden", "se"),
				relayPeer("11", "us-nyc-wg-001", "USA", "us"),
			}}}
			stubDeps(t, testConfig(), hs.client(), nil)

			err := RelayDelete(context.Background(), Options{}, RelayDeleteArgs{Countries: raw, CountriesGiven: true})
			assert.ErrorIs(t, err, filter.ErrNoCountryCodes)
			assert.Empty(t, hs.deleted)
		})
	}
}

func TestRelayAdd_EmptyCountryFilterIsRejected(t *testing.T) {
	hs := &coordinator{}
	stubDeps(t, testConfig(), hs.client(), catalogClient())

	err := RelayAdd(context.Background(), Options{}, RelayAddArgs{
		User:           reconcile.Selector{ID: "1"},
		Countries:      ",",
		CountriesGiven: true,
	})
	assert.ErrorIs(t, err, filter.ErrNoCountryCodes)
	assert.Empty(t, hs.registered)
}

func TestRelayDelete_InterruptedBatch(t *testing.T) {
	hs := &coordinator{state: headscale.State{Peers: []headscale.Peer{
		relayPeer("10", "se-sto-wg-001", "Sweden", "se"),
		relayPeer("11", "us-nyc-wg-001", "USA", "us"),
	}}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := hs.client()
	mock.DeletePeerFunc = func(context.Context, headscale.ID) error {
		cancel()
		return context.Canceled
	}
	out := stubDeps(t, testConfig(), mock, nil)

	err := RelayDelete(ctx, Options{Workers: 1}, RelayDeleteArgs{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, out.String(), "0 deletions succeeded, 1 failed, 1 not started")
}

func TestRelayList_UnauthorizedHint(t *testing.T) {
	mock := &headscale.MockClient{
		StateFunc: func(context.Context) (*headscale.State, error) {
			return nil, &headscale.APIError{Method: "GET", Path: "/api/v1/node", StatusCode: 401}
		},
	}
	stubDeps(t, testConfig(), mock, nil)

	err := RelayList(context.Background(), Options{}, "table")
	require.Error(t, err)
	assert.True(t, headscale.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "check HEADSCALE_API_KEY")
}
