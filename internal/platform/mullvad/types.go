package mullvad

import "net/netip"

// Catalog is the WireGuard relay list, nested country → city → relay.
type Catalog struct {
	Countries []Country `json:"countries"`
}

// Country groups the cities of one country.
type Country struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Cities []City `json:"cities"`
}

// City groups the relays of one city.
type City struct {
	Name      string       `json:"name"`
	Code      string       `json:"code"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Relays    []RelayEntry `json:"relays"`
}

// RelayEntry is one relay as listed in the catalog.
type RelayEntry struct {
	Hostname   string `json:"hostname"`
	PublicKey  string `json:"public_key"`
	IPv4AddrIn string `json:"ipv4_addr_in"`
	IPv6AddrIn string `json:"ipv6_addr_in"`
	Active     *bool  `json:"active,omitempty"`
	Owned      bool   `json:"owned"`
	Provider   string `json:"provider"`
}

// Relay is a catalog relay with its country and city attached.
type Relay struct {
	RelayEntry

	Country     string
	CountryCode string
	City        string
	CityCode    string
	Latitude    float64
	Longitude   float64
}

// IsActive reports whether the relay is in service. Catalogs that omit the
// flag list only active relays.
func (r Relay) IsActive() bool {
	return r.Active == nil || *r.Active
}

// Relays flattens the catalog in listing order.
func (c *Catalog) Relays() []Relay {
	var out []Relay
	for _, country := range c.Countries {
		for _, city := range country.Cities {
			for _, entry := range city.Relays {
				out = append(out, Relay{
					RelayEntry:  entry,
					Country:     country.Name,
					CountryCode: country.Code,
					City:        city.Name,
					CityCode:    city.Code,
					Latitude:    city.Latitude,
					Longitude:   city.Longitude,
				})
			}
		}
	}
	return out
}

// MasqueradeAddrs are the tunnel addresses the provider assigns to an
// authorized key.
type MasqueradeAddrs struct {
	IPv4 netip.Addr `json:"ipv4"`
	IPv6 netip.Addr `json:"ipv6"`
}
