// Package headscale is the gateway to a Headscale coordinator that carries
// the WireGuard-only peer extension.
//
// One State call returns the whole picture needed for planning: tailnet
// nodes, WireGuard-only peers and the masquerading connections between them.
// Mutations are single requests. DELETE answering 404 is treated as success
// so that deletion is idempotent.
package headscale
