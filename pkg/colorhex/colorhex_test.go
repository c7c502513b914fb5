package colorhex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		want string
	}{
		{"black", Color{0, 0, 0}, "#000000"},
		{"white", Color{1, 1, 1}, "#FFFFFF"},
		{"red", Color{1, 0, 0}, "#FF0000"},
		{"mid gray rounds", Color{0.5, 0.5, 0.5}, "#808080"},
		{"clamps above one", Color{1.2, 0, 0}, "#FF0000"},
		{"clamps below zero", Color{-0.1, 0, 0}, "#000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hex(tt.c))
		})
	}
}

func TestHexAlpha(t *testing.T) {
	assert.Equal(t, "#FF0000", HexAlpha(Color{1, 0, 0}, 1))
	assert.Equal(t, "#FF000080", HexAlpha(Color{1, 0, 0}, 0.5))
	// Alpha that rounds to 255 drops the alpha channel.
	assert.Equal(t, "#FF0000", HexAlpha(Color{1, 0, 0}, 0.999))
}

func TestParse(t *testing.T) {
	c, a, err := Parse("#112233")
	require.NoError(t, err)
	assert.InDelta(t, 0x11/255.0, c.R, 1e-9)
	assert.InDelta(t, 0x22/255.0, c.G, 1e-9)
	assert.InDelta(t, 0x33/255.0, c.B, 1e-9)
	assert.Equal(t, 1.0, a)

	c, a, err = Parse("#ff000080")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 0x80/255.0, a, 1e-9)
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{"", "112233", "#1122", "#11223", "#GGGGGG"} {
		_, _, err := Parse(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, hex := range []string{"#000000", "#FFFFFF", "#112233", "#EEDDCC", "#FF0000"} {
		c, _, err := Parse(hex)
		require.NoError(t, err)
		assert.Equal(t, hex, Hex(c))
	}
}

func TestExtractHex(t *testing.T) {
	got, ok := ExtractHex("Fill: #ff0000")
	require.True(t, ok)
	assert.Equal(t, "#FF0000", got)

	got, ok = ExtractHex("Stroke: #11223344 (44% visible)")
	require.True(t, ok)
	assert.Equal(t, "#11223344", got)

	_, ok = ExtractHex("no color here")
	assert.False(t, ok)
}
