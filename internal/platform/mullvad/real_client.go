package mullvad

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/imamik/hsmv/internal/config"
)

const (
	pathRelays    = "/public/relays/wireguard/v1/"
	pathAuthorize = "/wg"
)

// RealClient implements Client against the Mullvad HTTP API.
type RealClient struct {
	baseURL    string
	account    string
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

// WithBaseURL points the client at another API host.
func WithBaseURL(u string) ClientOption {
	return func(c *RealClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// NewRealClient creates a client for the given account number.
func NewRealClient(account string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		baseURL:    config.DefaultMullvadAPIURL,
		account:    account,
		timeouts:   config.LoadTimeouts(),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Relays downloads the WireGuard relay catalog.
func (c *RealClient) Relays(ctx context.Context) (*Catalog, error) {
	ctx, cancel := c.withTimeout(ctx, c.timeout(true))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathRelays, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.send(req, "relays")
	if err != nil {
		return nil, err
	}

	var catalog Catalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode relay catalog: %w", err)
	}
	return &catalog, nil
}

// Authorize registers publicKey with the account.
func (c *RealClient) Authorize(ctx context.Context, publicKey string) (MasqueradeAddrs, error) {
	ctx, cancel := c.withTimeout(ctx, c.timeout(false))
	defer cancel()

	form := url.Values{}
	form.Set("account", c.account)
	form.Set("pubkey", publicKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathAuthorize, strings.NewReader(form.Encode()))
	if err != nil {
		return MasqueradeAddrs{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.send(req, "auth")
	if err != nil {
		return MasqueradeAddrs{}, err
	}
	return ParseMasqueradeAddrs(string(body))
}

// ParseMasqueradeAddrs parses an authorization answer like
// "10.64.0.2/32,fc00:bbbb:bbbb:bb01::2/128".
func ParseMasqueradeAddrs(s string) (MasqueradeAddrs, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return MasqueradeAddrs{}, fmt.Errorf("%w: %q", ErrMalformedAuthResponse, s)
	}

	v4, err := parseAddr(parts[0])
	if err != nil || !v4.Is4() {
		return MasqueradeAddrs{}, fmt.Errorf("%w: bad ipv4 %q", ErrMalformedAuthResponse, parts[0])
	}
	v6, err := parseAddr(parts[1])
	if err != nil || !v6.Is6() {
		return MasqueradeAddrs{}, fmt.Errorf("%w: bad ipv6 %q", ErrMalformedAuthResponse, parts[1])
	}
	return MasqueradeAddrs{IPv4: v4, IPv6: v6}, nil
}

// parseAddr accepts an address with or without a prefix length.
func parseAddr(s string) (netip.Addr, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Addr{}, err
		}
		return p.Addr(), nil
	}
	return netip.ParseAddr(s)
}

func (c *RealClient) send(req *http.Request, op string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mullvad %s error: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mullvad %s error: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}

func (c *RealClient) timeout(catalog bool) time.Duration {
	if c.timeouts == nil {
		return 0
	}
	if catalog {
		return c.timeouts.Catalog
	}
	return c.timeouts.Request
}

func (c *RealClient) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
