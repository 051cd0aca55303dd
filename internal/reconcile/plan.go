package reconcile

import (
	"fmt"
	"net/netip"
	"slices"

	"github.com/imamik/hsmv/internal/config"
	"github.com/imamik/hsmv/internal/keys"
	"github.com/imamik/hsmv/internal/platform/headscale"
	"github.com/imamik/hsmv/internal/platform/mullvad"
	"github.com/imamik/hsmv/internal/util/filter"
	"github.com/imamik/hsmv/internal/util/naming"
)

// Skip records an item left out of a plan and why.
type Skip struct {
	Name   string
	Reason string
}

// RelayRegistrationPlan is the outcome of PlanRelayRegistrations.
type RelayRegistrationPlan struct {
	Requests []headscale.RegisterPeerRequest
	// Existing counts matching relays already registered.
	Existing int
	// Invalid lists relays whose catalog record cannot be registered.
	Invalid []Skip
}

// PlanRelayRegistrations returns one registration per relay that passes the
// country filter and has no peer of the same prefixed name yet.
func PlanRelayRegistrations(relays []mullvad.Relay, peers []headscale.Peer, user headscale.ID, countries filter.Countries) RelayRegistrationPlan {
	observed := make(map[string]struct{}, len(peers))
	for _, p := range peers {
		if p.IsRelay() {
			observed[p.Name] = struct{}{}
		}
	}

	var plan RelayRegistrationPlan
	for _, relay := range relays {
		if !countries.Match(relay.CountryCode) {
			continue
		}
		name := naming.RelayPeer(relay.Hostname)
		if _, ok := observed[name]; ok {
			plan.Existing++
			continue
		}
		if !relay.IsActive() {
			plan.Invalid = append(plan.Invalid, Skip{Name: name, Reason: "relay is inactive"})
			continue
		}

		req, err := RegistrationRequest(relay, user)
		if err != nil {
			plan.Invalid = append(plan.Invalid, Skip{Name: name, Reason: err.Error()})
			continue
		}
		// Catalogs may list a hostname twice; register it once.
		observed[name] = struct{}{}
		plan.Requests = append(plan.Requests, req)
	}
	return plan
}

// RegistrationRequest builds the peer registration for one relay.
func RegistrationRequest(relay mullvad.Relay, user headscale.ID) (headscale.RegisterPeerRequest, error) {
	nodeKey, err := keys.ProviderToNodeKey(relay.PublicKey)
	if err != nil {
		return headscale.RegisterPeerRequest{}, err
	}

	v4, err := netip.ParseAddr(relay.IPv4AddrIn)
	if err != nil || !v4.Is4() {
		return headscale.RegisterPeerRequest{}, fmt.Errorf("invalid ipv4 ingress address %q", relay.IPv4AddrIn)
	}
	endpoints := []string{netip.AddrPortFrom(v4, config.WireGuardPort).String()}
	if v6, err := netip.ParseAddr(relay.IPv6AddrIn); err == nil && v6.Is6() {
		endpoints = append(endpoints, netip.AddrPortFrom(v6, config.WireGuardPort).String())
	}

	extra, err := headscale.ExtraConfig{
		SuggestExitNode: true,
		Location: headscale.Location{
			Country:     relay.Country,
			CountryCode: relay.CountryCode,
			City:        naming.RelayCity(relay.City, relay.Hostname),
			CityCode:    relay.CityCode,
			Latitude:    relay.Latitude,
			Longitude:   relay.Longitude,
		},
	}.Encode()
	if err != nil {
		return headscale.RegisterPeerRequest{}, err
	}

	return headscale.RegisterPeerRequest{
		Name:        naming.RelayPeer(relay.Hostname),
		UserID:      user,
		PublicKey:   nodeKey.String(),
		AllowedIPs:  slices.Clone(config.AllowAllIPs),
		Endpoints:   endpoints,
		ExtraConfig: extra,
	}, nil
}

// RelayDeletionPlan is the outcome of PlanRelayDeletions. Connections must be
// deleted before Peers.
type RelayDeletionPlan struct {
	Connections []headscale.Connection
	Peers       []headscale.Peer
	// Unreadable lists relay peers left alone because a country filter was
	// given and their location could not be decoded.
	Unreadable []Skip
}

// PlanRelayDeletions selects relay peers matching the country filter and
// every connection that references them. Without a filter all relay peers
// are selected. With a filter, a peer whose country cannot be read is kept.
func PlanRelayDeletions(state *headscale.State, countries filter.Countries) RelayDeletionPlan {
	var plan RelayDeletionPlan
	doomed := make(map[headscale.ID]struct{})

	for _, peer := range state.RelayPeers() {
		if countries.Active() {
			loc, err := peer.Location()
			if err != nil || loc.CountryCode == "" {
				reason := "no country code"
				if err != nil {
					reason = err.Error()
				}
				plan.Unreadable = append(plan.Unreadable, Skip{Name: peer.Name, Reason: reason})
				continue
			}
			if !countries.Match(loc.CountryCode) {
				continue
			}
		}
		doomed[peer.ID] = struct{}{}
		plan.Peers = append(plan.Peers, peer)
	}

	for _, conn := range state.Connections {
		if _, ok := doomed[conn.PeerID]; ok {
			plan.Connections = append(plan.Connections, conn)
		}
	}
	return plan
}

// PlanNodeConnections returns one connection request per relay peer the node
// is not yet connected to. All requests carry the same masquerade pair.
func PlanNodeConnections(state *headscale.State, node headscale.ID, addrs mullvad.MasqueradeAddrs) []headscale.CreateConnectionRequest {
	connected := state.ConnectedPeers(node)

	var ipv4, ipv6 string
	if addrs.IPv4.IsValid() {
		ipv4 = addrs.IPv4.String()
	}
	if addrs.IPv6.IsValid() {
		ipv6 = addrs.IPv6.String()
	}

	var reqs []headscale.CreateConnectionRequest
	for _, peer := range state.RelayPeers() {
		if _, ok := connected[peer.ID]; ok {
			continue
		}
		reqs = append(reqs, headscale.CreateConnectionRequest{
			NodeID:       node,
			PeerID:       peer.ID,
			IPv4MasqAddr: ipv4,
			IPv6MasqAddr: ipv6,
		})
	}
	return reqs
}

// PlanNodeDisconnections returns the node's connections to current relay
// peers. Connections to other peers are left alone.
func PlanNodeDisconnections(state *headscale.State, node headscale.ID) []headscale.Connection {
	relays := make(map[headscale.ID]struct{})
	for _, p := range state.RelayPeers() {
		relays[p.ID] = struct{}{}
	}

	var out []headscale.Connection
	for _, c := range state.Connections {
		if c.NodeID != node {
			continue
		}
		if _, ok := relays[c.PeerID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// HasFullAccess reports whether the node is connected to every relay peer.
func HasFullAccess(state *headscale.State, node headscale.ID) bool {
	connected := state.ConnectedPeers(node)
	for _, p := range state.RelayPeers() {
		if _, ok := connected[p.ID]; !ok {
			return false
		}
	}
	return true
}
