// Copyright 2024 The svgdom Authors. All rights reserved.
//
// Leaf graphics elements. Each kind pairs a constructor with an
// immutable geometry table mapping attribute names to axis-aware
// setters; whatever the table does not claim falls through to the
// common attribute handler and then the style cascade.
package svgdom

import (
	"encoding/xml"
	"strings"

	cfp "github.com/raykov/css-font-parser"
	"go.uber.org/zap"
)

// lengthSetter binds one geometric attribute to the node field it
// mutates and the axis its percentages resolve against.
type lengthSetter struct {
	axis lengthAxis
	set  func(n Node, v float64)
}

var rectGeometry = map[string]lengthSetter{
	"x":      {horizontalLength, func(n Node, v float64) { n.(*Rect).X = v }},
	"y":      {verticalLength, func(n Node, v float64) { n.(*Rect).Y = v }},
	"width":  {horizontalLength, func(n Node, v float64) { n.(*Rect).W = v }},
	"height": {verticalLength, func(n Node, v float64) { n.(*Rect).H = v }},
	// rx and ry mirror each other immediately as they are seen; the
	// order the document wrote them in is significant.
	"rx": {horizontalLength, func(n Node, v float64) {
		r := n.(*Rect)
		r.Rx = v
		r.hasRx = true
		if !r.hasRy {
			r.Ry = v
		}
	}},
	"ry": {verticalLength, func(n Node, v float64) {
		r := n.(*Rect)
		r.Ry = v
		r.hasRy = true
		if !r.hasRx {
			r.Rx = v
		}
	}},
}

var circleGeometry = map[string]lengthSetter{
	"cx": {horizontalLength, func(n Node, v float64) { n.(*Circle).Cx = v }},
	"cy": {verticalLength, func(n Node, v float64) { n.(*Circle).Cy = v }},
	"r":  {diagonalLength, func(n Node, v float64) { n.(*Circle).R = v }},
}

var ellipseGeometry = map[string]lengthSetter{
	"cx": {horizontalLength, func(n Node, v float64) { n.(*Ellipse).Cx = v }},
	"cy": {verticalLength, func(n Node, v float64) { n.(*Ellipse).Cy = v }},
	"rx": {horizontalLength, func(n Node, v float64) { n.(*Ellipse).Rx = v }},
	"ry": {verticalLength, func(n Node, v float64) { n.(*Ellipse).Ry = v }},
}

var lineGeometry = map[string]lengthSetter{
	"x1": {horizontalLength, func(n Node, v float64) { n.(*Line).X1 = v }},
	"y1": {verticalLength, func(n Node, v float64) { n.(*Line).Y1 = v }},
	"x2": {horizontalLength, func(n Node, v float64) { n.(*Line).X2 = v }},
	"y2": {verticalLength, func(n Node, v float64) { n.(*Line).Y2 = v }},
}

var imageGeometry = map[string]lengthSetter{
	"x":      {horizontalLength, func(n Node, v float64) { n.(*Image).X = v }},
	"y":      {verticalLength, func(n Node, v float64) { n.(*Image).Y = v }},
	"width":  {horizontalLength, func(n Node, v float64) { n.(*Image).W = v }},
	"height": {verticalLength, func(n Node, v float64) { n.(*Image).H = v }},
}

var useGeometry = map[string]lengthSetter{
	"x": {horizontalLength, func(n Node, v float64) { n.(*Use).X = v }},
	"y": {verticalLength, func(n Node, v float64) { n.(*Use).Y = v }},
	"width": {horizontalLength, func(n Node, v float64) {
		u := n.(*Use)
		u.W = v
		u.WidthSet = true
	}},
	"height": {verticalLength, func(n Node, v float64) {
		u := n.(*Use)
		u.H = v
		u.HeightSet = true
	}},
}

var textGeometry = map[string]lengthSetter{
	"x":         {horizontalLength, func(n Node, v float64) { n.(*Text).X = v }},
	"y":         {verticalLength, func(n Node, v float64) { n.(*Text).Y = v }},
	"font-size": {diagonalLength, func(n Node, v float64) { n.(*Text).FontSize = v }},
}

// parseElementAttrs runs the per-kind dispatch: geometry table first,
// then common attributes, then the general style handler. Unknown
// attributes are ignored, never fatal.
func (p *parser) parseElementAttrs(n Node, attrs []xml.Attr, geom map[string]lengthSetter) {
	for _, attr := range attrs {
		name := attr.Name.Local
		if geom != nil {
			if entry, ok := geom[name]; ok {
				entry.set(n, p.vp.length(attr.Value, entry.axis))
				continue
			}
		}
		switch name {
		case "id":
			n.Base().ID = attr.Value
		case "class":
			n.Base().Style.CSSClass = strings.TrimSpace(attr.Value)
		case "style":
			parseInlineStyle(p, n, attr.Value)
		default:
			applyStyleDecl(p, n, name, attr.Value, srcPresentation)
		}
	}
}

func (p *parser) newRect(attrs []xml.Attr) Node {
	n := &Rect{NodeBase: p.newBase()}
	p.parseElementAttrs(n, attrs, rectGeometry)
	return n
}

func (p *parser) newCircle(attrs []xml.Attr) Node {
	n := &Circle{NodeBase: p.newBase()}
	p.parseElementAttrs(n, attrs, circleGeometry)
	return n
}

func (p *parser) newEllipse(attrs []xml.Attr) Node {
	n := &Ellipse{NodeBase: p.newBase()}
	p.parseElementAttrs(n, attrs, ellipseGeometry)
	return n
}

func (p *parser) newLine(attrs []xml.Attr) Node {
	n := &Line{NodeBase: p.newBase()}
	p.parseElementAttrs(n, attrs, lineGeometry)
	return n
}

func (p *parser) newImage(attrs []xml.Attr) Node {
	n := &Image{NodeBase: p.newBase()}
	for _, attr := range attrs {
		if attr.Name.Local == "href" {
			n.Href = strings.TrimSpace(attr.Value)
		}
	}
	p.parseElementAttrs(n, attrs, imageGeometry)
	return n
}

func (p *parser) newPath(attrs []xml.Attr) Node {
	n := &Path{NodeBase: p.newBase()}
	for _, attr := range attrs {
		if attr.Name.Local == "d" {
			n.D = attr.Value
			compiled, err := p.paths.compilePath(attr.Value)
			if err != nil {
				p.warn("unparsable path data", zap.Error(err))
				continue
			}
			n.Path = compiled
		}
	}
	p.parseElementAttrs(n, attrs, nil)
	return n
}

func (p *parser) newPolygon(attrs []xml.Attr) Node {
	n := &Polygon{NodeBase: p.newBase()}
	n.Points = p.parsePolyPoints(attrs)
	n.Path = compilePolyPath(n.Points, true)
	p.parseElementAttrs(n, attrs, nil)
	return n
}

func (p *parser) newPolyline(attrs []xml.Attr) Node {
	n := &Polyline{NodeBase: p.newBase()}
	n.Points = p.parsePolyPoints(attrs)
	n.Path = compilePolyPath(n.Points, false)
	p.parseElementAttrs(n, attrs, nil)
	return n
}

func (p *parser) parsePolyPoints(attrs []xml.Attr) []float64 {
	for _, attr := range attrs {
		if attr.Name.Local != "points" {
			continue
		}
		pts, err := numberList(attr.Value, nil)
		if err != nil || len(pts)%2 != 0 {
			p.warn("unparsable point list", zap.String("value", attr.Value))
			return nil
		}
		return pts
	}
	return nil
}

func (p *parser) newText(attrs []xml.Attr) Node {
	n := &Text{NodeBase: p.newBase(), FontSize: 10}
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "font-family":
			n.FontFamily = strings.TrimSpace(attr.Value)
		case "font-style":
			n.FontStyle = strings.TrimSpace(attr.Value)
		case "font-weight":
			n.FontWeight = strings.TrimSpace(attr.Value)
		case "font-variant":
			n.Variant = strings.TrimSpace(attr.Value)
		case "text-anchor":
			n.Anchor = strings.TrimSpace(attr.Value)
		case "font":
			// The whole shorthand, e.g. "italic small-caps bold 12px Georgia".
			f := cfp.Parse(attr.Value)
			if f.Size != "" {
				n.FontSize = p.vp.length(f.Size, diagonalLength)
			}
			n.FontStyle = f.Style
			n.FontWeight = f.Weight
			n.Variant = f.Variant
			if len(f.Family) > 0 {
				n.FontFamily = strings.Join(f.Family, ",")
			}
		}
	}
	p.parseElementAttrs(n, attrs, textGeometry)
	return n
}

func (p *parser) newUse(attrs []xml.Attr) Node {
	n := &Use{NodeBase: p.newBase()}
	for _, attr := range attrs {
		if attr.Name.Local == "href" {
			n.Href = strings.TrimPrefix(strings.TrimSpace(attr.Value), "#")
		}
	}
	p.parseElementAttrs(n, attrs, useGeometry)
	if n.X != 0 || n.Y != 0 {
		// x/y fold into the node transform up front.
		m := Identity.Translate(n.X, n.Y)
		if n.Transform != nil {
			m = n.Transform.Mult(m)
		}
		n.Transform = &m
	}
	return n
}

func (p *parser) newGaussianBlur(attrs []xml.Attr) Node {
	n := &GaussianBlur{NodeBase: p.newBase(), Valid: true}
	n.Style.Display = false
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "stdDeviation":
			devs, err := numberList(attr.Value, nil)
			if err != nil || len(devs) == 0 {
				p.warn("unparsable stdDeviation", zap.String("value", attr.Value))
				continue
			}
			n.StdDevX = devs[0]
			n.StdDevY = devs[0]
			if len(devs) > 1 {
				n.StdDevY = devs[1]
			}
			if n.StdDevX < 0 || n.StdDevY < 0 {
				// A negative deviation disables the primitive.
				n.Valid = false
			}
		case "edgeMode":
			n.EdgeModeWrap = strings.TrimSpace(attr.Value) == "wrap"
		case "x":
			n.Box.X, n.Box.Pct[0] = p.parseBoxCoord(attr.Value, horizontalLength)
			n.HasBox = true
		case "y":
			n.Box.Y, n.Box.Pct[1] = p.parseBoxCoord(attr.Value, verticalLength)
			n.HasBox = true
		case "width":
			n.Box.W, n.Box.Pct[2] = p.parseBoxCoord(attr.Value, horizontalLength)
			n.HasBox = true
		case "height":
			n.Box.H, n.Box.Pct[3] = p.parseBoxCoord(attr.Value, verticalLength)
			n.HasBox = true
		}
	}
	p.parseElementAttrs(n, attrs, nil)
	return n
}

// parseBoxCoord reads a filter region coordinate, keeping percentages
// as fractions with a flag since the box they are relative to is only
// known at paint time.
func (p *parser) parseBoxCoord(v string, axis lengthAxis) (float64, bool) {
	f, pct, err := readFraction(v)
	if err != nil {
		return 0, false
	}
	if pct {
		return f, true
	}
	return p.vp.length(v, axis), false
}
