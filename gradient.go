// Copyright 2024 The svgdom Authors. All rights reserved.
//
// Gradient paint servers. Coordinates are held as fractions of the
// gradient's bounds; absolute user-space input is normalized against
// the viewport before resolution. Per-field flags record what the
// document set explicitly so href inheritance can fill in the rest.
package svgdom

import (
	"encoding/xml"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
)

// SpreadMethod is the gradient edge behavior beyond the stop range.
type SpreadMethod byte

const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

const epsilonF = 1e-5

type gradFlag uint16

const (
	gfUnits gradFlag = 1 << iota
	gfSpread
	gfX1
	gfY1
	gfX2
	gfY2
	gfCx
	gfCy
	gfFx
	gfFy
	gfR
)

type linearCoords struct {
	X1, Y1, X2, Y2 float64
	Pct            [4]bool
}

type radialCoords struct {
	Cx, Cy, Fx, Fy, R float64
	Pct               [5]bool
}

// Gradient is a linear or radial paint server. Ref names a base
// gradient whose set fields fill in this gradient's unset ones.
// Resolution hands every referencing paint its own clone, because
// per-paint opacity multiplies into stop alpha.
type Gradient struct {
	ID        string
	Ref       string
	IsRadial  bool
	UserSpace bool
	Spread    SpreadMethod
	Transform *Matrix2D
	Stops     []rasterx.GradStop
	Bounds    viewport
	Linear    linearCoords
	Radial    radialCoords

	flags              gradFlag
	parsedFx, parsedFy bool
}

// newLinearGradient applies the SVG defaults: a horizontal unit run.
func newLinearGradient() *Gradient {
	return &Gradient{
		Linear: linearCoords{X2: 1, Pct: [4]bool{true, true, true, true}},
	}
}

// newRadialGradient applies the SVG defaults: centered, half-size.
func newRadialGradient() *Gradient {
	return &Gradient{
		IsRadial: true,
		Radial: radialCoords{
			Cx: 0.5, Cy: 0.5, Fx: 0.5, Fy: 0.5, R: 0.5,
			Pct: [5]bool{true, true, true, true, true},
		},
	}
}

// Clone returns an independent deep copy.
func (g *Gradient) Clone() *Gradient {
	dup := *g
	dup.Stops = append([]rasterx.GradStop(nil), g.Stops...)
	if g.Transform != nil {
		m := *g.Transform
		dup.Transform = &m
	}
	return &dup
}

// multiplyOpacity folds a paint opacity into the stop alphas.
func (g *Gradient) multiplyOpacity(a uint8) {
	f := float64(a) / 255
	for i := range g.Stops {
		g.Stops[i].Opacity *= f
	}
}

// normalize rescales absolute user-space coordinates into fractions of
// the viewport so both unit modes share one representation.
func (g *Gradient) normalize(vp viewport) {
	if !g.UserSpace {
		return
	}
	if g.IsRadial {
		r := &g.Radial
		coords := []struct {
			v    *float64
			pct  *bool
			axis lengthAxis
		}{
			{&r.Cx, &r.Pct[0], horizontalLength},
			{&r.Cy, &r.Pct[1], verticalLength},
			{&r.Fx, &r.Pct[2], horizontalLength},
			{&r.Fy, &r.Pct[3], verticalLength},
			{&r.R, &r.Pct[4], diagonalLength},
		}
		for _, c := range coords {
			if !*c.pct {
				if b := vp.basis(c.axis); b != 0 {
					*c.v /= b
				}
				*c.pct = true
			}
		}
		return
	}
	l := &g.Linear
	coords := []struct {
		v    *float64
		pct  *bool
		axis lengthAxis
	}{
		{&l.X1, &l.Pct[0], horizontalLength},
		{&l.Y1, &l.Pct[1], verticalLength},
		{&l.X2, &l.Pct[2], horizontalLength},
		{&l.Y2, &l.Pct[3], verticalLength},
	}
	for _, c := range coords {
		if !*c.pct {
			if b := vp.basis(c.axis); b != 0 {
				*c.v /= b
			}
			*c.pct = true
		}
	}
}

// inheritFrom copies every field this gradient did not set from base.
// One hop only; base's own unresolved ref is not chased.
func (g *Gradient) inheritFrom(base *Gradient) {
	if base == nil {
		return
	}
	if g.flags&gfUnits == 0 {
		g.UserSpace = base.UserSpace
	}
	if g.flags&gfSpread == 0 {
		g.Spread = base.Spread
	}
	if g.Transform == nil && base.Transform != nil {
		m := *base.Transform
		g.Transform = &m
	}
	if len(g.Stops) == 0 {
		g.Stops = append([]rasterx.GradStop(nil), base.Stops...)
	}
	if g.IsRadial == base.IsRadial {
		if g.IsRadial {
			if g.flags&gfCx == 0 {
				g.Radial.Cx, g.Radial.Pct[0] = base.Radial.Cx, base.Radial.Pct[0]
				if g.flags&gfFx == 0 && !g.parsedFx {
					g.Radial.Fx, g.Radial.Pct[2] = base.Radial.Fx, base.Radial.Pct[2]
				}
			}
			if g.flags&gfCy == 0 {
				g.Radial.Cy, g.Radial.Pct[1] = base.Radial.Cy, base.Radial.Pct[1]
				if g.flags&gfFy == 0 && !g.parsedFy {
					g.Radial.Fy, g.Radial.Pct[3] = base.Radial.Fy, base.Radial.Pct[3]
				}
			}
			if g.flags&gfFx == 0 && base.parsedFx {
				g.Radial.Fx, g.Radial.Pct[2] = base.Radial.Fx, base.Radial.Pct[2]
			}
			if g.flags&gfFy == 0 && base.parsedFy {
				g.Radial.Fy, g.Radial.Pct[3] = base.Radial.Fy, base.Radial.Pct[3]
			}
			if g.flags&gfR == 0 {
				g.Radial.R, g.Radial.Pct[4] = base.Radial.R, base.Radial.Pct[4]
			}
		} else {
			if g.flags&gfX1 == 0 {
				g.Linear.X1, g.Linear.Pct[0] = base.Linear.X1, base.Linear.Pct[0]
			}
			if g.flags&gfY1 == 0 {
				g.Linear.Y1, g.Linear.Pct[1] = base.Linear.Y1, base.Linear.Pct[1]
			}
			if g.flags&gfX2 == 0 {
				g.Linear.X2, g.Linear.Pct[2] = base.Linear.X2, base.Linear.Pct[2]
			}
			if g.flags&gfY2 == 0 {
				g.Linear.Y2, g.Linear.Pct[3] = base.Linear.Y2, base.Linear.Pct[3]
			}
		}
	}
}

// LinearPoints returns the run in absolute coordinates against the
// gradient bounds.
func (g *Gradient) LinearPoints() (x1, y1, x2, y2 float64) {
	b := g.Bounds
	return b.X + b.W*g.Linear.X1, b.Y + b.H*g.Linear.Y1,
		b.X + b.W*g.Linear.X2, b.Y + b.H*g.Linear.Y2
}

// RadialPoints returns center, focus and radius in absolute
// coordinates against the gradient bounds.
func (g *Gradient) RadialPoints() (cx, cy, fx, fy, r float64) {
	b := g.Bounds
	return b.X + b.W*g.Radial.Cx, b.Y + b.H*g.Radial.Cy,
		b.X + b.W*g.Radial.Fx, b.Y + b.H*g.Radial.Fy,
		math.Max(b.W, b.H) * g.Radial.R
}

// parseGradientAttrs reads the attributes shared by both gradient
// kinds.
func (p *parser) parseGradientAttr(g *Gradient, attr xml.Attr) {
	switch attr.Name.Local {
	case "id":
		g.ID = attr.Value
	case "href":
		g.Ref = strings.TrimPrefix(strings.TrimSpace(attr.Value), "#")
	case "gradientUnits":
		switch strings.TrimSpace(attr.Value) {
		case "userSpaceOnUse":
			g.UserSpace = true
			g.flags |= gfUnits
		case "objectBoundingBox":
			g.UserSpace = false
			g.flags |= gfUnits
		}
	case "spreadMethod":
		switch strings.TrimSpace(attr.Value) {
		case "pad":
			g.Spread = PadSpread
			g.flags |= gfSpread
		case "reflect":
			g.Spread = ReflectSpread
			g.flags |= gfSpread
		case "repeat":
			g.Spread = RepeatSpread
			g.flags |= gfSpread
		}
	case "gradientTransform":
		m, err := parseTransform(attr.Value)
		if err != nil {
			p.warn("unparsable gradientTransform", zap.String("value", attr.Value))
			return
		}
		g.Transform = &m
	}
}

func (p *parser) parseLinearGradient(attrs []xml.Attr) *Gradient {
	g := newLinearGradient()
	for _, attr := range attrs {
		var (
			field *float64
			pct   *bool
			flag  gradFlag
		)
		switch attr.Name.Local {
		case "x1":
			field, pct, flag = &g.Linear.X1, &g.Linear.Pct[0], gfX1
		case "y1":
			field, pct, flag = &g.Linear.Y1, &g.Linear.Pct[1], gfY1
		case "x2":
			field, pct, flag = &g.Linear.X2, &g.Linear.Pct[2], gfX2
		case "y2":
			field, pct, flag = &g.Linear.Y2, &g.Linear.Pct[3], gfY2
		default:
			p.parseGradientAttr(g, attr)
			continue
		}
		f, isPct, err := readFraction(attr.Value)
		if err != nil {
			p.warn("unparsable gradient coordinate",
				zap.String("attr", attr.Name.Local), zap.String("value", attr.Value))
			continue
		}
		if !isPct && !g.UserSpace {
			// Bounding-box units take plain numbers as fractions too.
			isPct = true
		}
		*field, *pct = f, isPct
		g.flags |= flag
	}
	return g
}

func (p *parser) parseRadialGradient(attrs []xml.Attr) *Gradient {
	g := newRadialGradient()
	for _, attr := range attrs {
		var (
			field *float64
			pct   *bool
			flag  gradFlag
		)
		switch attr.Name.Local {
		case "cx":
			field, pct, flag = &g.Radial.Cx, &g.Radial.Pct[0], gfCx
		case "cy":
			field, pct, flag = &g.Radial.Cy, &g.Radial.Pct[1], gfCy
		case "fx":
			field, pct, flag = &g.Radial.Fx, &g.Radial.Pct[2], gfFx
			g.parsedFx = true
		case "fy":
			field, pct, flag = &g.Radial.Fy, &g.Radial.Pct[3], gfFy
			g.parsedFy = true
		case "r":
			field, pct, flag = &g.Radial.R, &g.Radial.Pct[4], gfR
		default:
			p.parseGradientAttr(g, attr)
			continue
		}
		f, isPct, err := readFraction(attr.Value)
		if err != nil {
			p.warn("unparsable gradient coordinate",
				zap.String("attr", attr.Name.Local), zap.String("value", attr.Value))
			continue
		}
		if !isPct && !g.UserSpace {
			isPct = true
		}
		*field, *pct = f, isPct
		g.flags |= flag
	}
	// The focus tracks the center unless it was given explicitly.
	if !g.parsedFx && g.flags&gfCx != 0 {
		g.Radial.Fx, g.Radial.Pct[2] = g.Radial.Cx, g.Radial.Pct[0]
	}
	if !g.parsedFy && g.flags&gfCy != 0 {
		g.Radial.Fy, g.Radial.Pct[3] = g.Radial.Cy, g.Radial.Pct[1]
	}
	return g
}

type stopFlag uint8

const (
	stopFlagOpacity stopFlag = 1 << iota
	stopFlagColor
)

// parseStop reads a <stop> element. Style declarations win over
// presentation attributes, and stop-color may defer to the nearest
// open ancestor's color.
func (p *parser) parseStop(attrs []xml.Attr) rasterx.GradStop {
	stop := rasterx.GradStop{StopColor: color.NRGBA{0, 0, 0, 0xFF}, Opacity: 1}
	var flags stopFlag

	setColor := func(v string) bool {
		if strings.TrimSpace(strings.ToLower(v)) == "currentcolor" {
			stop.StopColor = p.findLatestColor()
			return true
		}
		c, ok := parseColor(v)
		if !ok {
			p.warn("unparsable stop-color", zap.String("value", v))
			return false
		}
		stop.StopColor = c
		return true
	}

	for _, attr := range attrs {
		if attr.Name.Local != "style" {
			continue
		}
		for _, decl := range strings.Split(attr.Value, ";") {
			kv := strings.SplitN(decl, ":", 2)
			if len(kv) != 2 {
				continue
			}
			v, _ := cutImportant(kv[1])
			switch strings.TrimSpace(strings.ToLower(kv[0])) {
			case "offset":
				if f, ok := parseOffset(v); ok {
					stop.Offset = f
				}
			case "stop-color":
				if setColor(v) {
					flags |= stopFlagColor
				}
			case "stop-opacity":
				stop.Opacity = float64(parseOpacity(v)) / 255
				flags |= stopFlagOpacity
			}
		}
	}
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "offset":
			if f, ok := parseOffset(attr.Value); ok {
				stop.Offset = f
			}
		case "stop-color":
			if flags&stopFlagColor == 0 {
				setColor(attr.Value)
			}
		case "stop-opacity":
			if flags&stopFlagOpacity == 0 {
				stop.Opacity = float64(parseOpacity(attr.Value)) / 255
			}
		}
	}
	return stop
}

func alphaColor(c color.Color, opacity float64) color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(opacity * 0xFF)}
}

// tColor maps the parameterized position along the gradient to a
// color according to the spread mode and the stop list.
func (g *Gradient) tColor(t, opacity float64) color.Color {
	d := len(g.Stops)
	if t >= 1.0 && g.Spread == PadSpread {
		s := g.Stops[d-1]
		return alphaColor(s.StopColor, s.Opacity*opacity)
	}
	if t <= 0.0 && g.Spread == PadSpread {
		return alphaColor(g.Stops[0].StopColor, g.Stops[0].Opacity*opacity)
	}
	modRange := 1.0
	if g.Spread == ReflectSpread {
		modRange = 2.0
	}
	mod := math.Mod(t, modRange)
	if mod < 0 {
		mod += modRange
	}

	place := 0 // advance to the stop mod sits beyond
	for place != len(g.Stops) && mod > g.Stops[place].Offset {
		place++
	}
	switch g.Spread {
	case RepeatSpread:
		var s1, s2 rasterx.GradStop
		switch place {
		case 0, d:
			s1, s2 = g.Stops[d-1], g.Stops[0]
		default:
			s1, s2 = g.Stops[place-1], g.Stops[place]
		}
		return g.blendStops(mod, opacity, s1, s2, false)
	case ReflectSpread:
		switch place {
		case 0:
			return alphaColor(g.Stops[0].StopColor, g.Stops[0].Opacity*opacity)
		case d:
			// The mod interval is two wide, so the stop list runs in
			// reverse before the sequence repeats.
			for place != d*2 && mod-1 > (1-g.Stops[d*2-place-1].Offset) {
				place++
			}
			switch place {
			case d:
				s := g.Stops[d-1]
				return alphaColor(s.StopColor, s.Opacity*opacity)
			case d * 2:
				return alphaColor(g.Stops[0].StopColor, g.Stops[0].Opacity*opacity)
			default:
				return g.blendStops(mod-1, opacity,
					g.Stops[d*2-place], g.Stops[d*2-place-1], true)
			}
		default:
			return g.blendStops(mod, opacity,
				g.Stops[place-1], g.Stops[place], false)
		}
	default: // PadSpread
		switch place {
		case 0:
			return alphaColor(g.Stops[0].StopColor, g.Stops[0].Opacity*opacity)
		case len(g.Stops):
			s := g.Stops[len(g.Stops)-1]
			return alphaColor(s.StopColor, s.Opacity*opacity)
		default:
			return g.blendStops(mod, opacity, g.Stops[place-1], g.Stops[place], false)
		}
	}
}

func (g *Gradient) blendStops(t, opacity float64, s1, s2 rasterx.GradStop, flip bool) color.Color {
	s1off := s1.Offset
	if s1.Offset > s2.Offset && !flip { // repeat spread wraps
		s1off--
		if t > 1 {
			t--
		}
	}
	if s2.Offset == s1off {
		return alphaColor(s2.StopColor, s2.Opacity)
	}
	if flip {
		t = 1 - t
	}
	tp := (t - s1off) / (s2.Offset - s1off)
	r1, g1, b1, _ := s1.StopColor.RGBA()
	r2, g2, b2, _ := s2.StopColor.RGBA()

	return alphaColor(color.RGBA{
		uint8((float64(r1)*(1-tp) + float64(r2)*tp) / 256),
		uint8((float64(g1)*(1-tp) + float64(g2)*tp) / 256),
		uint8((float64(b1)*(1-tp) + float64(b2)*tp) / 256),
		0xFF}, (s1.Opacity*(1-tp)+s2.Opacity*tp)*opacity)
}

// ColorFunction returns either a flat color or a rasterx.ColorFunc
// evaluating the gradient at raster positions, for a scene builder to
// hand to its scanner.
func (g *Gradient) ColorFunction(opacity float64) interface{} {
	switch len(g.Stops) {
	case 0:
		return alphaColor(color.RGBA{255, 0, 255, 255}, opacity) // stopless gradients stand out
	case 1:
		return alphaColor(g.Stops[0].StopColor, opacity)
	}

	sort.Slice(g.Stops, func(i, j int) bool {
		return g.Stops[i].Offset < g.Stops[j].Offset
	})

	w, h := g.Bounds.W, g.Bounds.H
	oriX, oriY := g.Bounds.X, g.Bounds.Y
	mtx := Identity
	if g.Transform != nil {
		mtx = *g.Transform
	}
	gradT := Identity.Translate(oriX, oriY).Scale(w, h).
		Mult(mtx).Scale(1/w, 1/h).Translate(-oriX, -oriY).Invert()

	if g.IsRadial {
		cx := g.Bounds.X + g.Bounds.W*g.Radial.Cx
		cy := g.Bounds.Y + g.Bounds.H*g.Radial.Cy
		rx := g.Bounds.W * g.Radial.R
		ry := g.Bounds.H * g.Radial.R

		if g.Radial.Cx == g.Radial.Fx && g.Radial.Cy == g.Radial.Fy {
			// Focus and center coincide; t is distance from center
			// scaled by the bounds aspect ratio times r.
			return rasterx.ColorFunc(func(xi, yi int) color.Color {
				x, y := gradT.Transform(float64(xi)+0.5, float64(yi)+0.5)
				dx := x - cx
				dy := y - cy
				return g.tColor(math.Sqrt(dx*dx/(rx*rx)+dy*dy/(ry*ry)), opacity)
			})
		}
		fx := g.Bounds.X + g.Bounds.W*g.Radial.Fx
		fy := g.Bounds.Y + g.Bounds.H*g.Radial.Fy

		fx /= rx
		fy /= ry
		cx /= rx
		cy /= ry

		dfx := fx - cx
		dfy := fy - cy

		if dfx*dfx+dfy*dfy > 1 {
			// Focus outside the circle; take the intersection of the
			// center-focus line with the circle per the SVG spec.
			nfx, nfy, intersects := rasterx.RayCircleIntersectionF(fx, fy, cx, cy, cx, cy, 1.0-epsilonF)
			fx, fy = nfx, nfy
			if !intersects {
				return color.RGBA{255, 255, 0, 255} // should not happen
			}
		}
		return rasterx.ColorFunc(func(xi, yi int) color.Color {
			x, y := gradT.Transform(float64(xi)+0.5, float64(yi)+0.5)

			ex := x / rx
			ey := y / ry

			t1x, t1y, intersects := rasterx.RayCircleIntersectionF(ex, ey, fx, fy, cx, cy, 1.0)
			if !intersects { // use the last stop color
				s := g.Stops[len(g.Stops)-1]
				return alphaColor(s.StopColor, s.Opacity*opacity)
			}
			tdx, tdy := t1x-fx, t1y-fy
			dx, dy := ex-fx, ey-fy
			if tdx*tdx+tdy*tdy < epsilonF {
				s := g.Stops[len(g.Stops)-1]
				return alphaColor(s.StopColor, s.Opacity*opacity)
			}
			return g.tColor(math.Sqrt(dx*dx+dy*dy)/math.Sqrt(tdx*tdx+tdy*tdy), opacity)
		})
	}

	p1x, p1y, p2x, p2y := g.LinearPoints()
	dx := p2x - p1x
	dy := p2y - p1y
	d := dx*dx + dy*dy // self inner product
	return rasterx.ColorFunc(func(xi, yi int) color.Color {
		x, y := gradT.Transform(float64(xi)+0.5, float64(yi)+0.5)
		dfx := x - p1x
		dfy := y - p1y
		return g.tColor((dx*dfx+dy*dfy)/d, opacity)
	})
}
