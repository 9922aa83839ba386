package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// ErrUnknownStyle is returned when parsing a style name fails.
var ErrUnknownStyle = errors.New("render: unknown meter style")

// Style selects how each meter is drawn.
type Style int

const (
	StyleRectangle Style = iota
	StyleArcsSameAngles
	StyleArcsSameLength
)

var styleNames = map[Style]string{
	StyleRectangle:      "Rectangle",
	StyleArcsSameAngles: "ArcsSameAngles",
	StyleArcsSameLength: "ArcsSameLength",
}

// Styles lists every style in declaration order.
func Styles() []Style {
	return []Style{StyleRectangle, StyleArcsSameAngles, StyleArcsSameLength}
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// IsArc reports whether the style draws annular sectors.
func (s Style) IsArc() bool {
	return s == StyleArcsSameAngles || s == StyleArcsSameLength
}

// ParseStyle accepts style names case-insensitively.
func ParseStyle(name string) (Style, error) {
	for s, n := range styleNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

// Set implements pflag.Value.
func (s *Style) Set(name string) error {
	v, err := ParseStyle(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Type implements pflag.Value.
func (s *Style) Type() string {
	return "style"
}

var _ pflag.Value = (*Style)(nil)
