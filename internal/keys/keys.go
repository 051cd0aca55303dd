package keys

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go4.org/mem"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
	"tailscale.com/types/key"
)

// NodeKeyPrefix is the literal tag that precedes the hex form of a node key.
const NodeKeyPrefix = "nodekey:"

// keyLen is the raw length of a Curve25519 public key.
const keyLen = 32

var (
	// ErrInvalidProviderKey is returned when a relay provider key cannot be decoded.
	ErrInvalidProviderKey = errors.New("invalid provider public key")
	// ErrInvalidNodeKey is returned when a node key is not 64 hex characters.
	ErrInvalidNodeKey = errors.New("invalid node key")
)

// ProviderToNodeKey converts a base64 WireGuard public key into a node key.
// Padding is optional. Inputs longer than 32 bytes keep only their tail.
func ProviderToNodeKey(s string) (key.NodePublic, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(s), "=")
	raw, err := base64.RawStdEncoding.DecodeString(trimmed)
	if err != nil {
		return key.NodePublic{}, fmt.Errorf("%w: %v", ErrInvalidProviderKey, err)
	}
	if len(raw) < keyLen {
		return key.NodePublic{}, fmt.Errorf("%w: decoded %d bytes, need %d", ErrInvalidProviderKey, len(raw), keyLen)
	}
	return key.NodePublicFromRaw32(mem.B(raw[len(raw)-keyLen:])), nil
}

// NodeToProviderKey converts a node key (with or without the "nodekey:" tag)
// into the relay provider's WireGuard key. Its String method yields base64.
func NodeToProviderKey(s string) (wgtypes.Key, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(s), NodeKeyPrefix)
	if len(clean) != 2*keyLen {
		return wgtypes.Key{}, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidNodeKey, 2*keyLen, len(clean))
	}

	var nk key.NodePublic
	if err := nk.UnmarshalText([]byte(NodeKeyPrefix + clean)); err != nil {
		return wgtypes.Key{}, fmt.Errorf("%w: %v", ErrInvalidNodeKey, err)
	}
	return wgtypes.Key(nk.Raw32()), nil
}

// ProviderKeyString is NodeToProviderKey rendered as base64.
func ProviderKeyString(nodeKey string) (string, error) {
	k, err := NodeToProviderKey(nodeKey)
	if err != nil {
		return "", err
	}
	return k.String(), nil
}
