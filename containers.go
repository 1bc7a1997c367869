// Copyright 2024 The svgdom Authors. All rights reserved.
//
// Structural elements: the document root, groups, defs, symbols and
// the composite targets (clipPath, mask, filter).
package svgdom

import (
	"encoding/xml"
	"strings"

	"go.uber.org/zap"
)

func (p *parser) newDoc(attrs []xml.Attr) *Doc {
	n := &Doc{NodeBase: p.newBase()}
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "viewBox":
			pts, err := numberList(attr.Value, nil)
			if err != nil || len(pts) != 4 {
				p.warn("unparsable viewBox", zap.String("value", attr.Value))
				continue
			}
			n.ViewBox = viewport{X: pts[0], Y: pts[1], W: pts[2], H: pts[3]}
			n.HasViewBox = true
		case "width":
			n.W = p.vp.length(attr.Value, horizontalLength)
		case "height":
			n.H = p.vp.length(attr.Value, verticalLength)
		case "preserveAspectRatio":
			n.Align, n.MeetSlice = parsePreserveAspectRatio(attr.Value)
		}
	}
	p.parseElementAttrs(n, attrs, nil)
	return n
}

func (p *parser) newGroup(attrs []xml.Attr) Node {
	n := &Group{NodeBase: p.newBase()}
	p.parseElementAttrs(n, attrs, nil)
	return n
}

func (p *parser) newSymbol(attrs []xml.Attr) Node {
	n := &Symbol{NodeBase: p.newBase(), Align: AlignXMidYMid}
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "viewBox":
			pts, err := numberList(attr.Value, nil)
			if err != nil || len(pts) != 4 {
				p.warn("unparsable viewBox", zap.String("value", attr.Value))
				continue
			}
			n.ViewBox = viewport{X: pts[0], Y: pts[1], W: pts[2], H: pts[3]}
			n.HasViewBox = true
		case "width":
			n.W = p.vp.length(attr.Value, horizontalLength)
			n.HasWidth = true
		case "height":
			n.H = p.vp.length(attr.Value, verticalLength)
			n.HasHeight = true
		case "preserveAspectRatio":
			n.Align, n.MeetSlice = parsePreserveAspectRatio(attr.Value)
		case "overflow":
			n.OverflowVisible = strings.TrimSpace(attr.Value) == "visible"
		}
	}
	p.parseElementAttrs(n, attrs, nil)
	return n
}

func (p *parser) newClipPath(attrs []xml.Attr) Node {
	n := &ClipPath{NodeBase: p.newBase()}
	n.Style.Display = false
	for _, attr := range attrs {
		if attr.Name.Local == "clipPathUnits" {
			n.UserSpace = strings.TrimSpace(attr.Value) == "userSpaceOnUse"
		}
	}
	p.parseElementAttrs(n, attrs, nil)
	return n
}

func (p *parser) newMask(attrs []xml.Attr) Node {
	n := &Mask{NodeBase: p.newBase()}
	p.parseElementAttrs(n, attrs, nil)
	return n
}

func (p *parser) newFilter(attrs []xml.Attr) Node {
	// The default filter region extends 10% beyond the bounding box on
	// every side.
	n := &Filter{NodeBase: p.newBase()}
	n.Style.Display = false
	n.Box = filterBox{X: -0.1, Y: -0.1, W: 1.2, H: 1.2, Pct: [4]bool{true, true, true, true}}
	for _, attr := range attrs {
		switch attr.Name.Local {
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
		case "filterUnits":
			n.FilterUserSpace = strings.TrimSpace(attr.Value) == "userSpaceOnUse"
		case "primitiveUnits":
			n.PrimitiveUserSpace = strings.TrimSpace(attr.Value) == "userSpaceOnUse"
		}
	}
	p.parseElementAttrs(n, attrs, nil)
	return n
}
