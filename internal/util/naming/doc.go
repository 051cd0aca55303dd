// Package naming provides consistent names for coordinator objects created
// from relay provider data.
//
// Relay peers are named {prefix}{hostname} so they can be told apart from
// WireGuard-only peers managed by other tools. Connections have no name of
// their own; ConnectionName renders one for logs and tables.
package naming
