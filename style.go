// Copyright 2024 The svgdom Authors. All rights reserved.
//
// Style records and the cascade. Pass A runs while attributes stream
// in: each source (presentation attribute, inline style declaration,
// CSS rule) goes through applyStyleDecl, which consults the per-field
// flag bitsets to decide whether the assignment sticks. Pass B, the
// top-down inheritance walk, lives in resolve.go.
package svgdom

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
)

type styleFlag uint32

const (
	flagColor styleFlag = 1 << iota
	flagOpacity
	flagDisplay
	flagPaintOrder
	flagFill
	flagFillOpacity
	flagFillRule
	flagStroke
	flagStrokeOpacity
	flagStrokeWidth
	flagStrokeDash
	flagStrokeDashOffset
	flagStrokeCap
	flagStrokeJoin
	flagStrokeMiterLimit
	flagClipPath
	flagMask
	flagMaskType
	flagFilter
)

// FillRule selects the winding rule used to fill a shape.
type FillRule uint8

const (
	NonZeroRule FillRule = iota
	EvenOddRule
)

type FillStyle struct {
	Paint   Paint
	Opacity uint8
	Rule    FillRule
}

type StrokeStyle struct {
	Paint      Paint
	Opacity    uint8
	Width      float64
	Dash       []float64
	DashOffset float64
	Cap        rasterx.CapFunc
	Join       rasterx.JoinMode
	MiterLimit float64
}

// Composite is a clip-path, mask or filter reference: the raw url id
// collected during parsing plus the non-owning target pointer the
// resolver fills in.
type Composite struct {
	URL  string
	Node Node
}

// Style is the cascaded presentation state of one node. flags marks
// fields explicitly set by any source; important marks fields set by a
// !important declaration, which only another !important declaration on
// the same node may override.
type Style struct {
	Fill        FillStyle
	Stroke      StrokeStyle
	Opacity     uint8
	Color       color.NRGBA
	CurColorSet bool
	CSSClass    string
	Display     bool
	FillFirst   bool
	ClipPath    Composite
	Mask        Composite
	Filter      Composite

	flags     styleFlag // fields set by any source
	declared  styleFlag // fields set by a style declaration (inline or CSS)
	important styleFlag
}

// defaultStyle gives the SVG initial values: opaque black fill with a
// nonzero winding, no stroke, butt caps and miter joins.
func defaultStyle() Style {
	return Style{
		Fill: FillStyle{
			Paint:   Paint{Color: color.NRGBA{0, 0, 0, 0xFF}},
			Opacity: 255,
			Rule:    NonZeroRule,
		},
		Stroke: StrokeStyle{
			Paint:      Paint{None: true},
			Opacity:    255,
			Width:      1,
			Cap:        rasterx.ButtCap,
			Join:       rasterx.Miter,
			MiterLimit: 4,
		},
		Opacity:   255,
		Display:   true,
		FillFirst: true,
	}
}

// styleSource identifies which cascade layer a declaration came from.
type styleSource uint8

const (
	srcPresentation styleSource = iota
	srcInline
	srcCSS
)

type styleEntry struct {
	flag  styleFlag
	apply func(p *parser, n Node, v string)
}

var styleTable = map[string]styleEntry{
	"color": {flagColor, func(p *parser, n Node, v string) {
		if c, ok := parseColor(v); ok {
			s := &n.Base().Style
			s.Color = c
			s.CurColorSet = true
		}
	}},
	"display": {flagDisplay, func(p *parser, n Node, v string) {
		n.Base().Style.Display = strings.TrimSpace(v) != "none"
	}},
	"opacity": {flagOpacity, func(p *parser, n Node, v string) {
		n.Base().Style.Opacity = parseOpacity(v)
	}},
	"paint-order": {flagPaintOrder, func(p *parser, n Node, v string) {
		n.Base().Style.FillFirst = parsePaintOrder(v)
	}},
	"fill": {flagFill, func(p *parser, n Node, v string) {
		if paint, ok := parsePaint(v); ok {
			n.Base().Style.Fill.Paint = paint
		} else {
			p.warn("unparsable fill", zap.String("value", v))
		}
	}},
	"fill-opacity": {flagFillOpacity, func(p *parser, n Node, v string) {
		n.Base().Style.Fill.Opacity = parseOpacity(v)
	}},
	"fill-rule": {flagFillRule, func(p *parser, n Node, v string) {
		if strings.TrimSpace(v) == "evenodd" {
			n.Base().Style.Fill.Rule = EvenOddRule
		} else {
			n.Base().Style.Fill.Rule = NonZeroRule
		}
	}},
	"stroke": {flagStroke, func(p *parser, n Node, v string) {
		if paint, ok := parsePaint(v); ok {
			n.Base().Style.Stroke.Paint = paint
		} else {
			p.warn("unparsable stroke", zap.String("value", v))
		}
	}},
	"stroke-opacity": {flagStrokeOpacity, func(p *parser, n Node, v string) {
		n.Base().Style.Stroke.Opacity = parseOpacity(v)
	}},
	"stroke-width": {flagStrokeWidth, func(p *parser, n Node, v string) {
		n.Base().Style.Stroke.Width = p.vp.length(v, diagonalLength)
	}},
	"stroke-dasharray": {flagStrokeDash, func(p *parser, n Node, v string) {
		dashes, ok := p.vp.parseDashArray(v)
		if !ok {
			p.warn("negative dash value discards array", zap.String("value", v))
			return
		}
		n.Base().Style.Stroke.Dash = dashes
	}},
	"stroke-dashoffset": {flagStrokeDashOffset, func(p *parser, n Node, v string) {
		n.Base().Style.Stroke.DashOffset = p.vp.length(v, diagonalLength)
	}},
	"stroke-linecap": {flagStrokeCap, func(p *parser, n Node, v string) {
		switch strings.TrimSpace(v) {
		case "butt":
			n.Base().Style.Stroke.Cap = rasterx.ButtCap
		case "round":
			n.Base().Style.Stroke.Cap = rasterx.RoundCap
		case "square":
			n.Base().Style.Stroke.Cap = rasterx.SquareCap
		case "cubic":
			n.Base().Style.Stroke.Cap = rasterx.CubicCap
		case "quadratic":
			n.Base().Style.Stroke.Cap = rasterx.QuadraticCap
		}
	}},
	"stroke-linejoin": {flagStrokeJoin, func(p *parser, n Node, v string) {
		switch strings.TrimSpace(v) {
		case "miter":
			n.Base().Style.Stroke.Join = rasterx.Miter
		case "miter-clip":
			n.Base().Style.Stroke.Join = rasterx.MiterClip
		case "round":
			n.Base().Style.Stroke.Join = rasterx.Round
		case "bevel":
			n.Base().Style.Stroke.Join = rasterx.Bevel
		case "arc":
			n.Base().Style.Stroke.Join = rasterx.Arc
		case "arc-clip":
			n.Base().Style.Stroke.Join = rasterx.ArcClip
		}
	}},
	"stroke-miterlimit": {flagStrokeMiterLimit, func(p *parser, n Node, v string) {
		limit, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return
		}
		if limit < 1 {
			p.warn("invalid miterlimit", zap.String("value", v))
			return
		}
		n.Base().Style.Stroke.MiterLimit = limit
	}},
	"transform": {0, func(p *parser, n Node, v string) {
		m, err := parseTransform(v)
		if err != nil {
			p.warn("unparsable transform", zap.String("value", v))
			return
		}
		n.Base().Transform = &m
	}},
	"clip-path": {flagClipPath, func(p *parser, n Node, v string) {
		if url, ok := parseURLRef(v); ok {
			n.Base().Style.ClipPath.URL = url
		}
	}},
	"mask": {flagMask, func(p *parser, n Node, v string) {
		if url, ok := parseURLRef(v); ok {
			n.Base().Style.Mask.URL = url
		}
	}},
	"mask-type": {flagMaskType, func(p *parser, n Node, v string) {
		if m, ok := n.(*Mask); ok && strings.TrimSpace(v) == "alpha" {
			m.Type = MaskAlpha
		}
	}},
	"filter": {flagFilter, func(p *parser, n Node, v string) {
		if url, ok := parseURLRef(v); ok {
			n.Base().Style.Filter.URL = url
		}
	}},
}

// cutImportant strips a trailing !important token, reporting whether
// one was present.
func cutImportant(v string) (string, bool) {
	t := strings.TrimSpace(v)
	if cut, found := strings.CutSuffix(t, "!important"); found {
		return strings.TrimSpace(cut), true
	}
	return t, false
}

// applyStyleDecl routes one styling declaration through the cascade.
// It reports whether the property name was recognized.
func applyStyleDecl(p *parser, n Node, name, value string, src styleSource) bool {
	entry, ok := styleTable[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return false
	}
	s := &n.Base().Style
	if entry.flag == 0 {
		// transform has no cascade slot; last assignment wins.
		entry.apply(p, n, value)
		return true
	}
	switch src {
	case srcPresentation:
		// Lowest priority: any style declaration already on the node
		// blocks the attribute.
		if s.declared&entry.flag == 0 {
			entry.apply(p, n, value)
			s.flags |= entry.flag
		}
	case srcInline:
		value, important := cutImportant(value)
		if important || s.important&entry.flag == 0 {
			entry.apply(p, n, value)
			s.flags |= entry.flag
			s.declared |= entry.flag
			if important {
				s.important |= entry.flag
			}
		}
	case srcCSS:
		value, important := cutImportant(value)
		if important || s.declared&entry.flag == 0 {
			entry.apply(p, n, value)
			s.flags |= entry.flag
			s.declared |= entry.flag
			if important {
				s.important |= entry.flag
			}
		}
	}
	return true
}

// parseInlineStyle splits a style attribute into declarations and
// feeds each through the cascade.
func parseInlineStyle(p *parser, n Node, v string) {
	for _, decl := range strings.Split(v, ";") {
		kv := strings.SplitN(decl, ":", 2)
		if len(kv) != 2 {
			continue
		}
		applyStyleDecl(p, n, kv[0], kv[1], srcInline)
	}
}

// styleInherit fills every field the child did not explicitly set
// from the parent's resolved style. Display and scalar opacity apply
// to the element alone and never inherit.
func styleInherit(child, parent *Style) {
	if child.flags&flagColor == 0 {
		child.Color = parent.Color
		child.CurColorSet = parent.CurColorSet
	}
	if child.flags&flagPaintOrder == 0 {
		child.FillFirst = parent.FillFirst
	}
	if child.flags&flagFill == 0 {
		child.Fill.Paint = parent.Fill.Paint
		child.Fill.Paint.Gradient = nil
	}
	if child.flags&flagFillOpacity == 0 {
		child.Fill.Opacity = parent.Fill.Opacity
	}
	if child.flags&flagFillRule == 0 {
		child.Fill.Rule = parent.Fill.Rule
	}
	if child.flags&flagStroke == 0 {
		child.Stroke.Paint = parent.Stroke.Paint
		child.Stroke.Paint.Gradient = nil
	}
	if child.flags&flagStrokeOpacity == 0 {
		child.Stroke.Opacity = parent.Stroke.Opacity
	}
	if child.flags&flagStrokeWidth == 0 {
		child.Stroke.Width = parent.Stroke.Width
	}
	if child.flags&flagStrokeDash == 0 {
		child.Stroke.Dash = append([]float64(nil), parent.Stroke.Dash...)
	}
	if child.flags&flagStrokeDashOffset == 0 {
		child.Stroke.DashOffset = parent.Stroke.DashOffset
	}
	if child.flags&flagStrokeCap == 0 {
		child.Stroke.Cap = parent.Stroke.Cap
	}
	if child.flags&flagStrokeJoin == 0 {
		child.Stroke.Join = parent.Stroke.Join
	}
	if child.flags&flagStrokeMiterLimit == 0 {
		child.Stroke.MiterLimit = parent.Stroke.MiterLimit
	}
	// currentColor paints pick up the effective color once it is known.
	if child.Fill.Paint.CurColor && child.CurColorSet {
		child.Fill.Paint.Color = child.Color
	}
	if child.Stroke.Paint.CurColor && child.CurColorSet {
		child.Stroke.Paint.Color = child.Color
	}
}

// styleCopy overwrites to's fields with every field from has
// explicitly set. Used when cloning a use target, where the source
// node's own styling must survive on top of the inherited base.
func styleCopy(to, from *Style) {
	if from.flags&flagColor != 0 {
		to.Color = from.Color
		to.CurColorSet = from.CurColorSet
	}
	if from.flags&flagOpacity != 0 {
		to.Opacity = from.Opacity
	}
	if from.flags&flagDisplay != 0 {
		to.Display = from.Display
	}
	if from.flags&flagPaintOrder != 0 {
		to.FillFirst = from.FillFirst
	}
	if from.flags&flagFill != 0 {
		to.Fill.Paint = from.Fill.Paint
		to.Fill.Paint.Gradient = nil
	}
	if from.flags&flagFillOpacity != 0 {
		to.Fill.Opacity = from.Fill.Opacity
	}
	if from.flags&flagFillRule != 0 {
		to.Fill.Rule = from.Fill.Rule
	}
	if from.flags&flagStroke != 0 {
		to.Stroke.Paint = from.Stroke.Paint
		to.Stroke.Paint.Gradient = nil
	}
	if from.flags&flagStrokeOpacity != 0 {
		to.Stroke.Opacity = from.Stroke.Opacity
	}
	if from.flags&flagStrokeWidth != 0 {
		to.Stroke.Width = from.Stroke.Width
	}
	if from.flags&flagStrokeDash != 0 {
		to.Stroke.Dash = append([]float64(nil), from.Stroke.Dash...)
	}
	if from.flags&flagStrokeDashOffset != 0 {
		to.Stroke.DashOffset = from.Stroke.DashOffset
	}
	if from.flags&flagStrokeCap != 0 {
		to.Stroke.Cap = from.Stroke.Cap
	}
	if from.flags&flagStrokeJoin != 0 {
		to.Stroke.Join = from.Stroke.Join
	}
	if from.flags&flagStrokeMiterLimit != 0 {
		to.Stroke.MiterLimit = from.Stroke.MiterLimit
	}
	if from.ClipPath.URL != "" {
		to.ClipPath.URL = from.ClipPath.URL
	}
	if from.Mask.URL != "" {
		to.Mask.URL = from.Mask.URL
	}
	if from.Filter.URL != "" {
		to.Filter.URL = from.Filter.URL
	}
	if from.CSSClass != "" {
		to.CSSClass = from.CSSClass
	}
	to.flags |= from.flags
	to.declared |= from.declared
	to.important |= from.important
}
