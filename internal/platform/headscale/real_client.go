package headscale

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/imamik/hsmv/internal/config"
)

const (
	pathNode         = "/api/v1/node"
	pathRegisterPeer = "/api/v1/wireguard-only-peer/register"
	pathConnection   = "/api/v1/wireguard/connection"
	pathUser         = "/api/v1/user"
)

// RealClient implements Client against the Headscale HTTP API.
type RealClient struct {
	baseURL    string
	apiKey     string
	timeouts   *config.Timeouts
	httpClient *http.Client
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RealClient) {
		c.httpClient = hc
	}
}

// NewRealClient creates a client for the coordinator at baseURL.
func NewRealClient(baseURL, apiKey string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeouts:   config.LoadTimeouts(),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns nodes, WireGuard-only peers and connections.
func (c *RealClient) State(ctx context.Context) (*State, error) {
	var state State
	if err := c.do(ctx, http.MethodGet, pathNode, nil, &state); err != nil {
		return nil, fmt.Errorf("failed to fetch coordinator state: %w", err)
	}
	return &state, nil
}

// RegisterPeer registers a WireGuard-only peer.
func (c *RealClient) RegisterPeer(ctx context.Context, req RegisterPeerRequest) error {
	return c.do(ctx, http.MethodPost, pathRegisterPeer, req, nil)
}

// DeletePeer removes a WireGuard-only peer by id.
func (c *RealClient) DeletePeer(ctx context.Context, id ID) error {
	return c.delete(ctx, pathNode+"/"+url.PathEscape(id.String()))
}

// CreateConnection creates a masquerading connection.
func (c *RealClient) CreateConnection(ctx context.Context, req CreateConnectionRequest) error {
	return c.do(ctx, http.MethodPost, pathConnection, req, nil)
}

// DeleteConnection removes the connection between node and peer.
func (c *RealClient) DeleteConnection(ctx context.Context, node, peer ID) error {
	return c.delete(ctx, pathConnection+"/"+url.PathEscape(node.String())+"/"+url.PathEscape(peer.String()))
}

// ListUsers returns every user.
func (c *RealClient) ListUsers(ctx context.Context) ([]User, error) {
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, pathUser, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return resp.Users, nil
}

// UserByName returns the user with the given name, or nil if none exists.
func (c *RealClient) UserByName(ctx context.Context, name string) (*User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Name == name {
			return &users[i], nil
		}
	}
	return nil, nil
}

// delete issues a DELETE and treats 404 as already gone.
func (c *RealClient) delete(ctx context.Context, path string) error {
	err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}

func (c *RealClient) do(ctx context.Context, method, path string, body, out any) error {
	if c.timeouts != nil && c.timeouts.Request > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeouts.Request)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
