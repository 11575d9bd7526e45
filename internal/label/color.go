package label

import (
	"regexp"
	"strconv"
	"strings"
)

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|#[0-9a-fA-F]{8}|[a-zA-Z]{3,20}|rgba?\([0-9.,% ]+\))$`)

// colorOr returns c when it is a safe CSS colour, def otherwise. Colours end up
// inside CSS and SVG attributes, so anything else is dropped.
func colorOr(c, def string) string {
	c = strings.TrimSpace(c)
	if c == "" || !colorPattern.MatchString(c) {
		return def
	}
	return c
}

// hasColor reports whether c is a usable, non-transparent colour.
func hasColor(c string) bool {
	c = strings.TrimSpace(c)
	return c != "" && c != "transparent" && colorPattern.MatchString(c)
}

var namedColors = map[string][3]int{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"yellow": {255, 255, 0},
	"orange": {255, 165, 0},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
}

// rgb resolves a colour to its components for surfaces that cannot take CSS
// strings. Unknown values resolve to black.
func rgb(c string) (int, int, int) {
	c = strings.ToLower(strings.TrimSpace(c))
	if v, ok := namedColors[c]; ok {
		return v[0], v[1], v[2]
	}
	if !strings.HasPrefix(c, "#") {
		return 0, 0, 0
	}
	hex := c[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) < 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
