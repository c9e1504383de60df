package typedprefs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a packed 32-bit ARGB color, the representation used for color resources.
type Color uint32

// ARGB builds a Color from its channels.
func ARGB(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// A returns the alpha channel.
func (c Color) A() uint8 { return uint8(c >> 24) }

// R returns the red channel.
func (c Color) R() uint8 { return uint8(c >> 16) }

// G returns the green channel.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue channel.
func (c Color) B() uint8 { return uint8(c) }

// String renders the color as #AARRGGBB.
func (c Color) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// ParseColor parses #RGB, #ARGB, #RRGGBB and #AARRGGBB.
// Forms without alpha are fully opaque.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return 0, fmt.Errorf("%w: color %q must start with #", ErrInvalidValue, s)
	}

	switch len(s) {
	case 4, 7:
		cf, err := colorful.Hex(s)
		if err != nil {
			return 0, fmt.Errorf("%w: color %q: %v", ErrInvalidValue, s, err)
		}
		r, g, b := cf.RGB255()
		return ARGB(0xFF, r, g, b), nil
	case 5:
		// #ARGB expands each nibble.
		v, err := strconv.ParseUint(s[1:], 16, 16)
		if err != nil {
			return 0, fmt.Errorf("%w: color %q: %v", ErrInvalidValue, s, err)
		}
		a, r, g, b := uint8(v>>12&0xF), uint8(v>>8&0xF), uint8(v>>4&0xF), uint8(v&0xF)
		return ARGB(a*0x11, r*0x11, g*0x11, b*0x11), nil
	case 9:
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: color %q: %v", ErrInvalidValue, s, err)
		}
		return Color(v), nil
	}
	return 0, fmt.Errorf("%w: color %q has unsupported length", ErrInvalidValue, s)
}

// MarshalJSON encodes the color as a "#AARRGGBB" string.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts a color string or a packed number.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseColor(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	var n uint32
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: color must be a string or uint32", ErrInvalidValue)
	}
	*c = Color(n)
	return nil
}
