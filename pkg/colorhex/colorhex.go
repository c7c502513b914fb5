// Package colorhex converts between the host's normalized color
// representation (channels in the 0–1 range) and hexadecimal display
// strings. The conversion is bidirectional and lossy only at 8-bit
// rounding precision.
package colorhex

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Color is a normalized RGB color as stored in design documents.
// Channel values are in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

var hexPattern = regexp.MustCompile(`#[0-9a-fA-F]{6}(?:[0-9a-fA-F]{2})?`)

// channel clamps v to [0, 1] and rounds it to an 8-bit value.
func channel(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(math.Round(v * 255))
}

// Hex renders c as an uppercase "#RRGGBB" string.
func Hex(c Color) string {
	return fmt.Sprintf("#%02X%02X%02X", channel(c.R), channel(c.G), channel(c.B))
}

// HexAlpha renders c as "#RRGGBB" when alpha rounds to fully opaque,
// otherwise as "#RRGGBBAA".
func HexAlpha(c Color, alpha float64) string {
	a := channel(alpha)
	if a == 255 {
		return Hex(c)
	}
	return fmt.Sprintf("%s%02X", Hex(c), a)
}

// Parse converts a "#RRGGBB" or "#RRGGBBAA" string back to a normalized
// color and alpha. Alpha is 1 when the string carries no alpha channel.
// The leading "#" is required; hex digits may be either case.
func Parse(s string) (Color, float64, error) {
	if !strings.HasPrefix(s, "#") {
		return Color{}, 0, fmt.Errorf("invalid hex color %q: missing #", s)
	}
	digits := s[1:]
	if len(digits) != 6 && len(digits) != 8 {
		return Color{}, 0, fmt.Errorf("invalid hex color %q: want 6 or 8 digits", s)
	}
	var vals [4]uint8
	vals[3] = 255
	for i := 0; i < len(digits)/2; i++ {
		var v uint8
		if _, err := fmt.Sscanf(digits[i*2:i*2+2], "%02x", &v); err != nil {
			return Color{}, 0, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		vals[i] = v
	}
	c := Color{
		R: float64(vals[0]) / 255,
		G: float64(vals[1]) / 255,
		B: float64(vals[2]) / 255,
	}
	return c, float64(vals[3]) / 255, nil
}

// ExtractHex returns the first hex color embedded in s, uppercased.
// Used to match unbound-element detail strings against by-value ignores.
func ExtractHex(s string) (string, bool) {
	m := hexPattern.FindString(s)
	if m == "" {
		return "", false
	}
	return strings.ToUpper(m), true
}
