// Copyright 2024 The svgdom Authors. All rights reserved.
//
// Color and paint-server attribute parsing, including all SVG1.1
// color names via the colornames package.
package svgdom

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Paint is one of: none, currentColor, an explicit color, or a url
// reference to a gradient that resolution later replaces with an
// owned clone.
type Paint struct {
	Color    color.NRGBA
	Gradient *Gradient
	URL      string
	None     bool
	CurColor bool
}

// parsePaint reads a fill/stroke value. Malformed input reports
// ok=false so the caller keeps the previous value.
func parsePaint(s string) (Paint, bool) {
	v := strings.TrimSpace(s)
	switch strings.ToLower(v) {
	case "none":
		return Paint{None: true}, true
	case "currentcolor":
		return Paint{CurColor: true}, true
	}
	if url, ok := parseURLRef(v); ok {
		return Paint{URL: url}, true
	}
	c, ok := parseColor(v)
	if !ok {
		return Paint{}, false
	}
	return Paint{Color: c}, true
}

// parseURLRef extracts the id from a url(#id) token.
func parseURLRef(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "url(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	inner := strings.TrimSpace(s[4 : len(s)-1])
	inner = strings.Trim(inner, "'\"")
	if !strings.HasPrefix(inner, "#") {
		return "", false
	}
	return inner[1:], true
}

// parseColor reads #rgb, #rrggbb, rgb(...), hsl(...) and named colors.
func parseColor(s string) (color.NRGBA, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return color.NRGBA{}, false
	}
	if v[0] == '#' {
		return parseHexColor(v)
	}
	lower := strings.ToLower(v)
	switch {
	case strings.HasPrefix(lower, "rgb("):
		return parseRGBFunc(v[4:])
	case strings.HasPrefix(lower, "rgba("):
		return parseRGBFunc(v[5:])
	case strings.HasPrefix(lower, "hsl("):
		return parseHSLFunc(v[4:])
	}
	if cn, ok := colornames.Map[lower]; ok {
		return color.NRGBA{cn.R, cn.G, cn.B, 0xFF}, true
	}
	return color.NRGBA{}, false
}

func parseHexColor(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		// Duplicate each character per the three digit hex form.
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	var ch [3]uint8
	for i := range ch {
		t, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		ch[i] = uint8(t)
	}
	return color.NRGBA{ch[0], ch[1], ch[2], 0xFF}, true
}

func parseRGBFunc(s string) (color.NRGBA, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ")")
	vals := strings.Split(s, ",")
	if len(vals) < 3 {
		return color.NRGBA{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseColorChannel(vals[i])
		if !ok {
			return color.NRGBA{}, false
		}
		ch[i] = v
	}
	return color.NRGBA{ch[0], ch[1], ch[2], 0xFF}, true
}

func parseColorChannel(s string) (uint8, bool) {
	s = strings.TrimSpace(s)
	if p, found := strings.CutSuffix(s, "%"); found {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, false
		}
		return clampAlpha(math.Round(f * 255 / 100)), true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return clampAlpha(float64(n)), true
}

func parseHSLFunc(s string) (color.NRGBA, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ")")
	vals := strings.Split(s, ",")
	if len(vals) != 3 {
		return color.NRGBA{}, false
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
	if err != nil {
		return color.NRGBA{}, false
	}
	sat, ok := parsePercent(vals[1])
	if !ok {
		return color.NRGBA{}, false
	}
	l, ok := parsePercent(vals[2])
	if !ok {
		return color.NRGBA{}, false
	}
	r, g, b := hslToRGB(h, sat, l)
	return color.NRGBA{r, g, b, 0xFF}, true
}

func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	p, found := strings.CutSuffix(s, "%")
	if !found {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
	if err != nil {
		return 0, false
	}
	return math.Min(1, math.Max(0, f/100)), true
}

// hslToRGB is the standard CSS3 HSL to RGB conversion. h is in
// degrees, s and l are fractions.
func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360
	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		r = hueToChannel(p, q, h+1.0/3)
		g = hueToChannel(p, q, h)
		b = hueToChannel(p, q, h-1.0/3)
	}
	return uint8(math.Round(r * 255)), uint8(math.Round(g * 255)), uint8(math.Round(b * 255))
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}
