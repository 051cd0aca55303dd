// Package mullvad is the gateway to the Mullvad relay provider.
//
// It reads the public WireGuard relay catalog and authorizes a WireGuard
// public key against an account, which returns the masquerade address pair a
// coordinator connection needs.
package mullvad
