package identifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/types"
)

func TestDecodeRoundTrip(t *testing.T) {
	id := New()
	raw := Encode(id)

	assert.Len(t, raw, 24)
	assert.Equal(t, strings.ToLower(raw), raw)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"too short": "65f1c0",
		"too long":  "65f1c0d2e4b0a1a2b3c4d5e6ff",
		"non hex":   "zzzzzzzzzzzzzzzzzzzzzzzz",
		"integer":   "42",
		"uuid":      "5b0e0d8e-6c1a-4c4b-9c55-0c8d1f1f8a11",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidIdentifier)
		})
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		raw := Encode(New())
		_, dup := seen[raw]
		require.False(t, dup, "duplicate id %s", raw)
		seen[raw] = struct{}{}
	}
}
