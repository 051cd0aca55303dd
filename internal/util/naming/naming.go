package naming

import (
	"fmt"
	"strings"
)

// RelayPrefix marks coordinator peers that mirror relay provider relays.
const RelayPrefix = "mv-"

// RelayPeer returns the coordinator peer name for a relay hostname.
func RelayPeer(hostname string) string {
	return RelayPrefix + hostname
}

// IsRelayPeer reports whether a coordinator peer name belongs to a relay.
func IsRelayPeer(name string) bool {
	return strings.HasPrefix(name, RelayPrefix)
}

// RelayHostname strips the relay prefix from a peer name.
func RelayHostname(peerName string) string {
	return strings.TrimPrefix(peerName, RelayPrefix)
}

func ConnectionName(nodeID, peerID string) string {
	return fmt.Sprintf("conn-%s-%s", nodeID, peerID)
}

// RelayCity renders the city label stored in relay metadata, which carries the
// hostname so that several relays in one city stay distinguishable.
func RelayCity(city, hostname string) string {
	return fmt.Sprintf("%s (%s)", city, hostname)
}
