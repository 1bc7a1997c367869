// Copyright 2024 The svgdom Authors. All rights reserved.
//
// The document driver: consumes xml events, builds the raw tree
// through the per-kind dispatch tables and keeps the bookkeeping the
// resolver passes need afterwards (pending use references, postponed
// CSS targets, the gradient list).
package svgdom

import (
	"bytes"
	"encoding/xml"
	"image/color"
	"io"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// ErrorMode controls how recoverable malformed input is reported.
type ErrorMode uint8

const (
	// IgnoreErrorMode drops diagnostics silently.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs diagnostics and continues.
	WarnErrorMode
	// StrictErrorMode logs, accumulates and fails the load at the end.
	StrictErrorMode
)

// Longest legitimate element name we dispatch on; anything longer is
// noise from a hostile document.
const maxTagName = 20

// Accumulating-data modes for CharData routing.
type accumMode uint8

const (
	accumOther accumMode = iota
	accumStyle
	accumText
)

type openElem struct {
	node      Node
	grad      *Gradient
	container bool
}

type parser struct {
	vp    viewport
	log   *zap.Logger
	mode  ErrorMode
	errs  error
	paths pathScanner

	doc  *Doc
	defs *Defs

	stack     []Node // open containers, innermost last
	openStack []openElem

	currentGraphics Node
	curGradient     *Gradient
	curText         *Text

	gradients    []*Gradient
	styleNode    *CssSheet
	sheet        *styleSheet
	sheetReady   bool
	styleText    strings.Builder
	nodesToStyle []Node
	pendingUses  []*Use

	accum accumMode
}

func newParser(log *zap.Logger, mode ErrorMode, vp viewport) *parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &parser{
		vp:    vp,
		log:   log.Named("SVG"),
		mode:  mode,
		sheet: &styleSheet{},
	}
}

func (p *parser) warn(msg string, fields ...zap.Field) {
	switch p.mode {
	case WarnErrorMode:
		p.log.Warn(msg, fields...)
	case StrictErrorMode:
		p.log.Warn(msg, fields...)
		p.errs = multierr.Append(p.errs, &parseError{msg: msg})
	}
}

type parseError struct {
	msg string
}

func (e *parseError) Error() string { return e.msg }

func (p *parser) newBase() NodeBase {
	return NodeBase{Style: defaultStyle()}
}

// getDefs returns the single defs root, creating it on first use. It
// also absorbs stray children of graphics leaves so a malformed
// document cannot corrupt the display tree.
func (p *parser) getDefs() *Defs {
	if p.defs == nil {
		p.defs = &Defs{NodeBase: p.newBase()}
	}
	return p.defs
}

// findLatestColor walks the open element chain for the nearest
// explicitly set color, for stop-color: currentColor.
func (p *parser) findLatestColor() color.NRGBA {
	for i := len(p.openStack) - 1; i >= 0; i-- {
		if n := p.openStack[i].node; n != nil && n.Base().Style.CurColorSet {
			return n.Base().Style.Color
		}
	}
	return color.NRGBA{0, 0, 0, 0xFF}
}

// styled registers a freshly built node with the CSS machinery:
// immediate application when the sheet is already known, a queue slot
// otherwise.
func (p *parser) styled(n Node) {
	if p.sheetReady {
		p.applySheet(p.sheet, n)
		return
	}
	p.nodesToStyle = append(p.nodesToStyle, n)
}

func (p *parser) parent() Node {
	if p.currentGraphics != nil {
		return p.getDefs()
	}
	if len(p.stack) > 0 {
		return p.stack[len(p.stack)-1]
	}
	return p.doc
}

func attach(parent, child Node) {
	child.Base().Parent = parent
	parent.Base().appendChild(child)
}

var groupFactories = map[string]func(*parser, []xml.Attr) Node{
	"g":        (*parser).newGroup,
	"symbol":   (*parser).newSymbol,
	"mask":     (*parser).newMask,
	"clipPath": (*parser).newClipPath,
	"filter":   (*parser).newFilter,
}

var graphicsFactories = map[string]func(*parser, []xml.Attr) Node{
	"rect":           (*parser).newRect,
	"circle":         (*parser).newCircle,
	"ellipse":        (*parser).newEllipse,
	"line":           (*parser).newLine,
	"path":           (*parser).newPath,
	"polygon":        (*parser).newPolygon,
	"polyline":       (*parser).newPolyline,
	"image":          (*parser).newImage,
	"use":            (*parser).newUse,
	"text":           (*parser).newText,
	"feGaussianBlur": (*parser).newGaussianBlur,
}

// run executes the body parse over the whole document.
func (p *parser) run(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		switch se := t.(type) {
		case xml.StartElement:
			p.startElement(se)
		case xml.EndElement:
			p.endElement(se)
		case xml.CharData:
			p.charData(se)
		}
	}
	return p.resolve()
}

func (p *parser) startElement(se xml.StartElement) {
	name := se.Name.Local
	if len(name) > maxTagName {
		p.warn("oversized element name skipped", zap.Int("len", len(name)))
		p.openStack = append(p.openStack, openElem{})
		return
	}

	if p.doc == nil {
		if name != "svg" {
			// Content before the root element; the header phase already
			// guaranteed an <svg> exists somewhere.
			p.openStack = append(p.openStack, openElem{})
			return
		}
		p.doc = p.newDoc(se.Attr)
		p.styled(p.doc)
		p.stack = append(p.stack, p.doc)
		p.openStack = append(p.openStack, openElem{node: p.doc, container: true})
		return
	}

	switch {
	case name == "svg":
		// Nested svg viewports degrade to plain groups.
		n := p.newGroup(se.Attr)
		attach(p.parent(), n)
		p.styled(n)
		p.stack = append(p.stack, n)
		p.openStack = append(p.openStack, openElem{node: n, container: true})

	case name == "defs":
		d := p.getDefs()
		p.parseElementAttrs(d, se.Attr, nil)
		p.stack = append(p.stack, d)
		p.openStack = append(p.openStack, openElem{node: d, container: true})

	case name == "style":
		if p.styleNode == nil {
			p.styleNode = &CssSheet{NodeBase: p.newBase(), Sheet: p.sheet}
			attach(p.parent(), p.styleNode)
		}
		p.accum = accumStyle
		p.openStack = append(p.openStack, openElem{node: p.styleNode, container: false})

	case name == "linearGradient" || name == "radialGradient":
		var g *Gradient
		if name == "linearGradient" {
			g = p.parseLinearGradient(se.Attr)
		} else {
			g = p.parseRadialGradient(se.Attr)
		}
		p.gradients = append(p.gradients, g)
		if d, ok := p.parent().(*Defs); ok {
			d.Gradients = append(d.Gradients, g)
		}
		p.curGradient = g
		p.openStack = append(p.openStack, openElem{grad: g})

	case name == "stop":
		if p.curGradient != nil {
			p.curGradient.Stops = append(p.curGradient.Stops, p.parseStop(se.Attr))
		}
		p.openStack = append(p.openStack, openElem{})

	default:
		if factory, ok := groupFactories[name]; ok {
			n := factory(p, se.Attr)
			attach(p.parent(), n)
			p.styled(n)
			p.stack = append(p.stack, n)
			p.openStack = append(p.openStack, openElem{node: n, container: true})
			return
		}
		if factory, ok := graphicsFactories[name]; ok {
			n := factory(p, se.Attr)
			attach(p.parent(), n)
			p.styled(n)
			p.currentGraphics = n
			if u, ok := n.(*Use); ok && u.Href != "" {
				p.pendingUses = append(p.pendingUses, u)
			}
			if t, ok := n.(*Text); ok {
				p.accum = accumText
				p.curText = t
			}
			p.openStack = append(p.openStack, openElem{node: n})
			return
		}
		p.warn("unrecognized element skipped", zap.String("tag", name))
		p.openStack = append(p.openStack, openElem{})
	}
}

func (p *parser) endElement(se xml.EndElement) {
	if len(p.openStack) == 0 {
		return
	}
	elem := p.openStack[len(p.openStack)-1]
	p.openStack = p.openStack[:len(p.openStack)-1]

	if elem.container {
		if len(p.stack) > 0 {
			p.stack = p.stack[:len(p.stack)-1]
		}
	}
	if elem.grad != nil {
		p.curGradient = nil
	}
	if elem.node != nil && elem.node == p.currentGraphics {
		p.currentGraphics = nil
	}
	switch elem.node.(type) {
	case *CssSheet:
		p.parseStyleSheet(p.sheet, p.styleText.String())
		p.styleText.Reset()
		p.sheetReady = true
		p.accum = accumOther
	case *Text:
		p.accum = accumOther
		p.curText = nil
	}
}

func (p *parser) charData(cd xml.CharData) {
	switch p.accum {
	case accumStyle:
		p.styleText.Write(cd)
	case accumText:
		if p.curText != nil {
			p.curText.Data += string(cd)
		}
	}
}
