package keys

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawKey(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, keyLen)
}

func TestProviderToNodeKey(t *testing.T) {
	t.Parallel()

	raw := rawKey(0xab)
	padded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name  string
		input string
	}{
		{"padded", padded},
		{"unpadded", strings.TrimRight(padded, "=")},
		{"extra padding", padded + "=="},
		{"surrounding whitespace", "  " + padded + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			nk, err := ProviderToNodeKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, NodeKeyPrefix+hex.EncodeToString(raw), nk.String())
		})
	}
}

func TestProviderToNodeKey_KeepsTail(t *testing.T) {
	t.Parallel()

	blob := append([]byte{1, 2, 3, 4}, rawKey(0x5c)...)
	nk, err := ProviderToNodeKey(base64.StdEncoding.EncodeToString(blob))
	require.NoError(t, err)
	assert.Equal(t, NodeKeyPrefix+hex.EncodeToString(rawKey(0x5c)), nk.String())
}

func TestProviderToNodeKey_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not base64", "this is *not* base64!"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ProviderToNodeKey(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidProviderKey)
		})
	}
}

func TestNodeToProviderKey(t *testing.T) {
	t.Parallel()

	raw := rawKey(0x42)
	hexKey := hex.EncodeToString(raw)
	want := base64.StdEncoding.EncodeToString(raw)

	for _, input := range []string{NodeKeyPrefix + hexKey, hexKey, " " + NodeKeyPrefix + hexKey + " "} {
		k, err := NodeToProviderKey(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, k.String())
	}
}

func TestNodeToProviderKey_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"prefix only", NodeKeyPrefix},
		{"63 hex chars", NodeKeyPrefix + strings.Repeat("a", 63)},
		{"65 hex chars", NodeKeyPrefix + strings.Repeat("a", 65)},
		{"non hex", NodeKeyPrefix + strings.Repeat("z", 64)},
		{"wrong prefix", "mkey:" + strings.Repeat("a", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NodeToProviderKey(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidNodeKey)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, size := range []int{32, 33, 48, 64} {
		blob := make([]byte, size)
		for i := range blob {
			blob[i] = byte(i * 7)
		}
		provider := base64.StdEncoding.EncodeToString(blob)

		nodeKey, err := ProviderToNodeKey(provider)
		require.NoError(t, err)

		back, err := ProviderKeyString(nodeKey.String())
		require.NoError(t, err)

		assert.Equal(t, base64.StdEncoding.EncodeToString(blob[size-keyLen:]), back, "size %d", size)
	}
}
