package headscale

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hsmv/internal/config"
)

// testServer creates an httptest server that can be used to mock Headscale API responses.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux
}

func newTestServer() *testServer {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	return &testServer{
		server: server,
		mux:    mux,
	}
}

func (ts *testServer) close() {
	ts.server.Close()
}

// realClient returns a RealClient configured to use the test server.
func (ts *testServer) realClient() *RealClient {
	return NewRealClient(ts.server.URL+"/", "test-key",
		WithHTTPClient(ts.server.Client()),
		WithTimeouts(&config.Timeouts{Request: 5 * time.Second}),
	)
}

// handleFunc registers a handler for a specific pattern.
func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

// jsonResponse writes a JSON response with the given status code and body.
func jsonResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func TestRealClient_State_WithHTTPMock(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	ts.handleFunc("GET /api/v1/node", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"nodes": [{"id": "1", "name": "laptop", "givenName": "work-laptop", "user": {"id": 3, "name": "alice"}, "nodeKey": "nodekey:abc"}],
			"wireguardOnlyPeers": [
				{"id": 10, "name": "mv-se-sto-wg-001", "extraConfig": "{}"},
				{"id": "11", "name": "office-gw"}
			],
			"wireguardConnections": [{"nodeId": "1", "wgPeerId": "10", "ipv4MasqAddr": "10.64.0.2"}]
		}`))
	})

	state, err := ts.realClient().State(context.Background())
	require.NoError(t, err)

	require.Len(t, state.Nodes, 1)
	assert.Equal(t, ID("1"), state.Nodes[0].ID)
	assert.Equal(t, "work-laptop", state.Nodes[0].DisplayName())
	assert.Equal(t, ID("3"), state.Nodes[0].User.ID)

	require.Len(t, state.Peers, 2)
	assert.Equal(t, ID("10"), state.Peers[0].ID)
	assert.Len(t, state.RelayPeers(), 1)

	require.Len(t, state.Connections, 1)
	assert.Equal(t, ID("10"), state.Connections[0].PeerID)
}

func TestRealClient_State_EmptyBody(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	ts.handleFunc("GET /api/v1/node", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	state, err := ts.realClient().State(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Nodes)
	assert.Empty(t, state.Peers)
}

func TestRealClient_RegisterPeer_WithHTTPMock(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	var got map[string]any
	ts.handleFunc("POST /api/v1/wireguard-only-peer/register", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		jsonResponse(w, http.StatusOK, map[string]any{})
	})

	err := ts.realClient().RegisterPeer(context.Background(), RegisterPeerRequest{
		Name:        "mv-se-sto-wg-001",
		UserID:      "3",
		PublicKey:   "nodekey:00",
		AllowedIPs:  []string{"0.0.0.0/0", "::/0"},
		Endpoints:   []string{"1.2.3.4:51820"},
		ExtraConfig: "{}",
	})
	require.NoError(t, err)

	assert.Equal(t, "mv-se-sto-wg-001", got["name"])
	assert.Equal(t, "3", got["userId"])
	assert.Equal(t, "nodekey:00", got["publicKey"])
	assert.Equal(t, []any{"0.0.0.0/0", "::/0"}, got["allowedIps"])
	assert.Equal(t, "{}", got["extraConfig"])
}

func TestRealClient_RegisterPeer_Error(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	ts.handleFunc("POST /api/v1/wireguard-only-peer/register", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "peer already exists", http.StatusConflict)
	})

	err := ts.realClient().RegisterPeer(context.Background(), RegisterPeerRequest{Name: "mv-x"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, http.MethodPost, apiErr.Method)
	assert.Equal(t, pathRegisterPeer, apiErr.Path)
	assert.Equal(t, "peer already exists", apiErr.Body)
	assert.Contains(t, err.Error(), "HTTP 409")
}

func TestRealClient_DeletePeer(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "deleted", status: http.StatusOK},
		{name: "already gone", status: http.StatusNotFound},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			defer ts.close()

			var gotID string
			ts.handleFunc("DELETE /api/v1/node/{id}", func(w http.ResponseWriter, r *http.Request) {
				gotID = r.PathValue("id")
				w.WriteHeader(tt.status)
			})

			err := ts.realClient().DeletePeer(context.Background(), "42")
			assert.Equal(t, "42", gotID)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, IsNotFound(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRealClient_CreateConnection_WithHTTPMock(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	var got CreateConnectionRequest
	ts.handleFunc("POST /api/v1/wireguard/connection", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		jsonResponse(w, http.StatusOK, map[string]any{})
	})

	want := CreateConnectionRequest{NodeID: "1", PeerID: "10", IPv4MasqAddr: "10.64.0.2", IPv6MasqAddr: "fc00::2"}
	require.NoError(t, ts.realClient().CreateConnection(context.Background(), want))
	assert.Equal(t, want, got)
}

func TestRealClient_DeleteConnection_NotFoundIsSuccess(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	var node, peer string
	ts.handleFunc("DELETE /api/v1/wireguard/connection/{node}/{peer}", func(w http.ResponseWriter, r *http.Request) {
		node, peer = r.PathValue("node"), r.PathValue("peer")
		http.Error(w, "not found", http.StatusNotFound)
	})

	require.NoError(t, ts.realClient().DeleteConnection(context.Background(), "1", "10"))
	assert.Equal(t, "1", node)
	assert.Equal(t, "10", peer)
}

func TestRealClient_UserByName(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	var calls atomic.Int32
	ts.handleFunc("GET /api/v1/user", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		jsonResponse(w, http.StatusOK, map[string]any{
			"users": []map[string]any{
				{"id": "1", "name": "alice"},
				{"id": 2, "name": "bob"},
			},
		})
	})

	client := ts.realClient()

	user, err := client.UserByName(context.Background(), "bob")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, ID("2"), user.ID)

	user, err = client.UserByName(context.Background(), "carol")
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.Equal(t, int32(2), calls.Load())
}

func TestRealClient_Unauthorized(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	ts.handleFunc("GET /api/v1/user", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})

	_, err := ts.realClient().ListUsers(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "failed to list users")
}

func TestRealClient_ContextCancelled(t *testing.T) {
	ts := newTestServer()
	defer ts.close()

	ts.handleFunc("GET /api/v1/node", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, State{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ts.realClient().State(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
