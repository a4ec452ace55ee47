package convert

import (
	"fmt"
	"strings"

	"golang.org/x/image/colornames"
)

// transparentAVD is the drawable spelling of an absent paint.
const transparentAVD = "#00000000"

// normalizePaint rewrites the values of fill and stroke, which may be
// CSS color keywords in SVG, to the hexadecimal notation drawables
// require. Other attributes and unknown values are kept verbatim.
func normalizePaint(attr, value string) string {
	if attr != "fill" && attr != "stroke" {
		return value
	}
	return normalizeColor(value)
}

func normalizeColor(value string) string {
	name := strings.ToLower(strings.TrimSpace(value))
	switch name {
	case "none", "transparent":
		return transparentAVD
	}
	if c, ok := colornames.Map[name]; ok {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return value
}

// IsColorName reports whether `s` is a CSS color keyword.
func IsColorName(s string) bool {
	_, ok := colornames.Map[strings.ToLower(s)]
	return ok
}
