// Copyright 2024 The svgdom Authors. All rights reserved.
//
// Numeric attribute parsing: lengths with units, percentages against
// the viewport, opacities, offsets and number lists.
package svgdom

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// lengthAxis selects the viewport basis a percentage length resolves
// against.
type lengthAxis uint8

const (
	horizontalLength lengthAxis = iota
	verticalLength
	diagonalLength
	otherLength
)

// viewport is the coordinate basis percentages resolve against. One
// instance is shared per parse and restored to document scope before
// body resolution begins.
type viewport struct {
	X, Y, W, H float64
}

func (v viewport) diagonal() float64 {
	return math.Sqrt(v.W*v.W+v.H*v.H) / math.Sqrt2
}

func (v viewport) basis(axis lengthAxis) float64 {
	switch axis {
	case horizontalLength:
		return v.W
	case verticalLength:
		return v.H
	case diagonalLength:
		return v.diagonal()
	default:
		return math.Max(v.W, v.H)
	}
}

// scanFloat reads the longest numeric prefix of s. ok is false when no
// progress was made, which callers treat as an absent attribute.
func scanFloat(s string) (f float64, rest string, ok bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	for i < len(s) {
		c := s[i]
		if c >= '0' && c <= '9' || c == '.' || c == '+' || c == '-' || c == 'e' || c == 'E' {
			i++
			continue
		}
		break
	}
	for i > 0 {
		f, err := strconv.ParseFloat(s[:i], 64)
		if err == nil {
			return f, s[i:], true
		}
		i--
	}
	return 0, s, false
}

// length converts a length attribute to user-space pixels. Physical
// units use the fixed 96px/inch ratio; percentages scale against the
// basis selected by axis. Garbled input yields 0.
func (v viewport) length(s string, axis lengthAxis) float64 {
	f, rest, ok := scanFloat(s)
	if !ok {
		return 0
	}
	switch {
	case strings.HasPrefix(rest, "%"):
		return f * v.basis(axis) / 100
	case strings.HasPrefix(rest, "cm"):
		return f * 96 / 2.54
	case strings.HasPrefix(rest, "mm"):
		return f * 96 / 25.4
	case strings.HasPrefix(rest, "pt"):
		return f * 96 / 72
	case strings.HasPrefix(rest, "pc"):
		return f * 96 / 6
	case strings.HasPrefix(rest, "in"):
		return f * 96
	}
	return f
}

// parseOpacity converts an opacity value to a 0..255 alpha. Both the
// percentage and the plain float form clamp; unparsable text is fully
// opaque.
func parseOpacity(s string) uint8 {
	s = strings.TrimSpace(s)
	if p, found := strings.CutSuffix(s, "%"); found {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 255
		}
		return clampAlpha(math.Round(f * 2.55))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 255
	}
	return clampAlpha(math.Round(f * 255))
}

func clampAlpha(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}

// parseOffset reads a gradient stop offset as a fraction or a
// percentage, clamped to [0,1]. Trailing junk rejects the whole value.
func parseOffset(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	d := 1.0
	if p, found := strings.CutSuffix(s, "%"); found {
		d = 100
		s = strings.TrimSpace(p)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return math.Min(1, math.Max(0, f/d)), true
}

// readFraction reads a coordinate that is either a plain number or a
// percentage. Percentages come back as fractions with pct set, so the
// caller can postpone basis scaling to resolution time.
func readFraction(s string) (f float64, pct bool, err error) {
	s = strings.TrimSpace(s)
	d := 1.0
	if p, found := strings.CutSuffix(s, "%"); found {
		d = 100
		pct = true
		s = p
	}
	f, err = strconv.ParseFloat(s, 64)
	return f / d, pct, err
}

// numberList scans every number out of an SVG list attribute,
// consuming what it can: separators are anything non-numeric.
func numberList(s string, buf []float64) ([]float64, error) {
	buf = buf[:0]
	lastIndex := -1
	lr := ' '
	for i, r := range s {
		if !unicode.IsNumber(r) && r != '.' && !(r == '-' && lr == 'e') && r != 'e' {
			if lastIndex != -1 {
				f, err := strconv.ParseFloat(s[lastIndex:i], 64)
				if err != nil {
					return buf, err
				}
				buf = append(buf, f)
			}
			if r == '-' {
				lastIndex = i
			} else {
				lastIndex = -1
			}
		} else if lastIndex == -1 {
			lastIndex = i
		}
		lr = r
	}
	if lastIndex != -1 && lastIndex != len(s) {
		f, err := strconv.ParseFloat(s[lastIndex:], 64)
		if err != nil {
			return buf, err
		}
		buf = append(buf, f)
	}
	return buf, nil
}

// parseDashArray reads a dash pattern. A single negative entry
// discards the whole array; percentages resolve against the diagonal
// basis.
func (v viewport) parseDashArray(s string) ([]float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return nil, true
	}
	var dashes []float64
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}) {
		d := v.length(part, diagonalLength)
		if d < 0 {
			return nil, false
		}
		dashes = append(dashes, d)
	}
	return dashes, true
}

// parsePaintOrder reduces the three-token priority list to the single
// question the painter asks: does fill go down before stroke? Unknown
// tokens fall back to the fill-first default.
func parsePaintOrder(s string) bool {
	for _, tok := range strings.Fields(s) {
		switch tok {
		case "fill":
			return true
		case "stroke":
			return false
		}
	}
	return true
}

// Alignment values for preserveAspectRatio.
type AspectRatioAlign uint8

const (
	AlignNone AspectRatioAlign = iota
	AlignXMinYMin
	AlignXMidYMin
	AlignXMaxYMin
	AlignXMinYMid
	AlignXMidYMid
	AlignXMaxYMid
	AlignXMinYMax
	AlignXMidYMax
	AlignXMaxYMax
)

type AspectRatioMeetOrSlice uint8

const (
	AspectRatioMeet AspectRatioMeetOrSlice = iota
	AspectRatioSlice
)

var alignNames = map[string]AspectRatioAlign{
	"none":     AlignNone,
	"xMinYMin": AlignXMinYMin,
	"xMidYMin": AlignXMidYMin,
	"xMaxYMin": AlignXMaxYMin,
	"xMinYMid": AlignXMinYMid,
	"xMidYMid": AlignXMidYMid,
	"xMaxYMid": AlignXMaxYMid,
	"xMinYMax": AlignXMinYMax,
	"xMidYMax": AlignXMidYMax,
	"xMaxYMax": AlignXMaxYMax,
}

// parsePreserveAspectRatio defaults to xMidYMid meet per the SVG spec.
func parsePreserveAspectRatio(s string) (AspectRatioAlign, AspectRatioMeetOrSlice) {
	align := AlignXMidYMid
	meet := AspectRatioMeet
	fields := strings.Fields(s)
	if len(fields) > 0 {
		if a, ok := alignNames[fields[0]]; ok {
			align = a
		}
	}
	if len(fields) > 1 && fields[1] == "slice" {
		meet = AspectRatioSlice
	}
	return align, meet
}
