package headscale

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/imamik/hsmv/internal/util/naming"
)

// ID identifies a node, peer or user. Headscale encodes uint64 identifiers as
// JSON strings, older builds as numbers; both decode.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// User is a Headscale user (namespace).
type User struct {
	ID   ID     `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Node is a tailnet machine.
type Node struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	GivenName string `json:"givenName"`
	User      User   `json:"user"`
	NodeKey   string `json:"nodeKey"`
}

// DisplayName returns the given name, falling back to the hostname.
func (n Node) DisplayName() string {
	if n.GivenName != "" {
		return n.GivenName
	}
	return n.Name
}

// Peer is a WireGuard-only peer registered on the coordinator.
type Peer struct {
	ID         ID       `json:"id"`
	Name       string   `json:"name"`
	PublicKey  string   `json:"publicKey"`
	AllowedIPs []string `json:"allowedIps"`
	Endpoints  []string `json:"endpoints"`
	// ExtraConfig is an opaque JSON document, see ExtraConfig.
	ExtraConfig string `json:"extraConfig"`
}

// IsRelay reports whether the peer was registered by this tool.
func (p Peer) IsRelay() bool {
	return naming.IsRelayPeer(p.Name)
}

// Location decodes the location stored in the peer's extra config.
func (p Peer) Location() (Location, error) {
	if strings.TrimSpace(p.ExtraConfig) == "" {
		return Location{}, fmt.Errorf("peer %s has no extra config", p.Name)
	}
	var extra ExtraConfig
	if err := json.Unmarshal([]byte(p.ExtraConfig), &extra); err != nil {
		return Location{}, fmt.Errorf("failed to decode extra config of %s: %w", p.Name, err)
	}
	return extra.Location, nil
}

// Connection is a masquerading link from a node to a WireGuard-only peer.
type Connection struct {
	NodeID       ID     `json:"nodeId"`
	PeerID       ID     `json:"wgPeerId"`
	IPv4MasqAddr string `json:"ipv4MasqAddr,omitempty"`
	IPv6MasqAddr string `json:"ipv6MasqAddr,omitempty"`
}

// State is one snapshot of the coordinator.
type State struct {
	Nodes       []Node       `json:"nodes"`
	Peers       []Peer       `json:"wireguardOnlyPeers"`
	Connections []Connection `json:"wireguardConnections"`
}

// RelayPeers returns the peers carrying the relay name prefix.
func (s *State) RelayPeers() []Peer {
	var out []Peer
	for _, p := range s.Peers {
		if p.IsRelay() {
			out = append(out, p)
		}
	}
	return out
}

// NodeByID returns the node with the given id.
func (s *State) NodeByID(id ID) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeByName returns the first node whose given name or hostname equals name.
func (s *State) NodeByName(name string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.GivenName == name || n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// ConnectedPeers returns the ids of peers the node is connected to.
func (s *State) ConnectedPeers(node ID) map[ID]struct{} {
	out := make(map[ID]struct{})
	for _, c := range s.Connections {
		if c.NodeID == node {
			out[c.PeerID] = struct{}{}
		}
	}
	return out
}

// RegisterPeerRequest is the body of a WireGuard-only peer registration.
type RegisterPeerRequest struct {
	Name        string   `json:"name"`
	UserID      ID       `json:"userId"`
	PublicKey   string   `json:"publicKey"`
	AllowedIPs  []string `json:"allowedIps"`
	Endpoints   []string `json:"endpoints"`
	ExtraConfig string   `json:"extraConfig"`
}

// CreateConnectionRequest is the body of a connection creation.
type CreateConnectionRequest struct {
	NodeID       ID     `json:"nodeId"`
	PeerID       ID     `json:"wgPeerId"`
	IPv4MasqAddr string `json:"ipv4MasqAddr"`
	IPv6MasqAddr string `json:"ipv6MasqAddr,omitempty"`
}

// ExtraConfig is the document stored in Peer.ExtraConfig.
type ExtraConfig struct {
	SuggestExitNode bool     `json:"suggestExitNode"`
	Location        Location `json:"location"`
}

// Location describes where a relay lives. Keys are capitalized on the wire;
// decoding is case-insensitive so lower-camel documents read as well.
type Location struct {
	Country     string  `json:"Country" yaml:"country"`
	CountryCode string  `json:"CountryCode" yaml:"countryCode"`
	City        string  `json:"City" yaml:"city"`
	CityCode    string  `json:"CityCode" yaml:"cityCode"`
	Latitude    float64 `json:"Latitude" yaml:"latitude"`
	Longitude   float64 `json:"Longitude" yaml:"longitude"`
}

// Encode renders the extra config as the JSON string stored on the peer.
func (e ExtraConfig) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
