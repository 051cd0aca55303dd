// Package keys converts public keys between the encoding used by the relay
// provider (standard base64 WireGuard keys) and the node-key text form used by
// the coordinator ("nodekey:" followed by 64 hex characters).
//
// The provider-to-node direction is lossy: only the last 32 decoded bytes are
// kept, so round-tripping a longer blob yields its tail.
package keys
