// Copyright 2024 The svgdom Authors. All rights reserved.
//
// Post-parse resolution. Runs once the whole tree exists: postponed
// CSS, the use-clone worklist, composite and filter url binding,
// top-down style inheritance and per-paint gradient cloning. Every
// pass is idempotent and none of them can fail the document; bad
// references degrade to logged no-ops.
package svgdom

import (
	"go.uber.org/zap"
)

const (
	// cloneDepthLimit bounds use-clone recursion against hostile
	// self-amplifying documents.
	cloneDepthLimit = 8192
	// worklistPassLimit bounds the pending-use retry loop; adversarial
	// cyclic href chains otherwise have no termination proof.
	worklistPassLimit = 512
)

func (p *parser) resolve() error {
	if p.sheetReady {
		for _, n := range p.nodesToStyle {
			p.applySheet(p.sheet, n)
		}
	}
	p.nodesToStyle = nil

	for _, g := range p.gradients {
		g.normalize(p.vp)
	}

	p.clonePendingUses()
	p.updateComposites()

	if p.doc != nil {
		updateStyle(p.doc, nil)
		p.updateGradients(p.doc)
	}
	if p.defs != nil {
		for _, c := range p.defs.Children {
			updateStyle(c, nil)
		}
		p.updateGradients(p.defs)
	}
	return p.errs
}

// findNodeByID searches the document tree first, then defs, in
// document order.
func (p *parser) findNodeByID(id string) Node {
	if p.doc != nil {
		if n := findByID(p.doc, id); n != nil {
			return n
		}
	}
	if p.defs != nil {
		return findByID(p.defs, id)
	}
	return nil
}

func (p *parser) findGradient(id string) *Gradient {
	for _, g := range p.gradients {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// clonePendingUses drains the worklist of unresolved <use> elements.
// A pair whose target subtree still holds another pending use is
// requeued; a target on the referencing node's own ancestor chain is
// an invalid cycle and is dropped. Leftovers after the pass cap are
// unresolved-and-dropped.
func (p *parser) clonePendingUses() {
	queue := append([]*Use(nil), p.pendingUses...)
	p.pendingUses = nil
	for pass := 0; len(queue) > 0 && pass < worklistPassLimit; pass++ {
		progressed := false
		var next []*Use
		for i, u := range queue {
			target := p.findNodeByID(u.Href)
			if target == nil {
				next = append(next, u)
				continue
			}
			if isAncestor(u, target) {
				p.warn("use references its own ancestor", zap.String("href", u.Href))
				progressed = true
				continue
			}
			if p.targetHasPending(target, queue[i+1:], next) {
				next = append(next, u)
				continue
			}
			if sym, ok := target.(*Symbol); ok {
				u.Symbol = sym
				progressed = true
				continue
			}
			if child := p.cloneNode(target, u, 0); child != nil {
				u.appendChild(child)
			}
			progressed = true
		}
		queue = next
		if !progressed {
			break
		}
	}
	for _, u := range queue {
		p.warn("unresolved use reference dropped", zap.String("href", u.Href))
	}
}

// targetHasPending reports whether target's subtree contains a use
// element that is itself still waiting for resolution.
func (p *parser) targetHasPending(target Node, rest, requeued []*Use) bool {
	for _, other := range rest {
		if contains(target, other) {
			return true
		}
	}
	for _, other := range requeued {
		if contains(target, other) {
			return true
		}
	}
	return false
}

// cloneNode deep-copies from under parent. The clone starts from
// parent's style (cascade inheritance from the referencing node, not
// the original's ancestry) and then takes everything the original set
// explicitly.
func (p *parser) cloneNode(from, parent Node, depth int) Node {
	if depth >= cloneDepthLimit {
		p.warn("clone recursion limit reached", zap.String("id", from.Base().ID))
		return nil
	}
	to := emptyNodeOfKind(from)
	base := to.Base()
	base.Style = defaultStyle()
	styleInherit(&base.Style, &parent.Base().Style)
	copyAttr(to, from)
	base.Parent = parent
	for _, c := range from.Base().Children {
		if cc := p.cloneNode(c, to, depth+1); cc != nil {
			base.appendChild(cc)
		}
	}
	return to
}

func emptyNodeOfKind(from Node) Node {
	switch from.(type) {
	case *Doc:
		return &Doc{}
	case *Group:
		return &Group{}
	case *Defs:
		return &Defs{}
	case *Symbol:
		return &Symbol{}
	case *ClipPath:
		return &ClipPath{}
	case *Mask:
		return &Mask{}
	case *CssSheet:
		return &CssSheet{}
	case *Filter:
		return &Filter{}
	case *GaussianBlur:
		return &GaussianBlur{}
	case *Circle:
		return &Circle{}
	case *Ellipse:
		return &Ellipse{}
	case *Rect:
		return &Rect{}
	case *Line:
		return &Line{}
	case *Path:
		return &Path{}
	case *Polygon:
		return &Polygon{}
	case *Polyline:
		return &Polyline{}
	case *Image:
		return &Image{}
	case *Text:
		return &Text{}
	case *Use:
		return &Use{}
	}
	return nil
}

// copyAttr moves identity, transform, explicit style and the
// kind-specific payload from one node onto its clone.
func copyAttr(to, from Node) {
	tb, fb := to.Base(), from.Base()
	tb.ID = fb.ID
	if fb.Transform != nil {
		m := *fb.Transform
		tb.Transform = &m
	}
	styleCopy(&tb.Style, &fb.Style)

	switch f := from.(type) {
	case *Doc:
		t := to.(*Doc)
		t.W, t.H, t.ViewBox, t.HasViewBox = f.W, f.H, f.ViewBox, f.HasViewBox
		t.Align, t.MeetSlice = f.Align, f.MeetSlice
	case *Symbol:
		t := to.(*Symbol)
		t.ViewBox, t.W, t.H = f.ViewBox, f.W, f.H
		t.Align, t.MeetSlice = f.Align, f.MeetSlice
		t.HasViewBox, t.HasWidth, t.HasHeight = f.HasViewBox, f.HasWidth, f.HasHeight
		t.OverflowVisible = f.OverflowVisible
	case *ClipPath:
		to.(*ClipPath).UserSpace = f.UserSpace
	case *Mask:
		to.(*Mask).Type = f.Type
	case *Filter:
		t := to.(*Filter)
		t.Box, t.HasBox = f.Box, f.HasBox
		t.FilterUserSpace, t.PrimitiveUserSpace = f.FilterUserSpace, f.PrimitiveUserSpace
	case *GaussianBlur:
		t := to.(*GaussianBlur)
		t.StdDevX, t.StdDevY = f.StdDevX, f.StdDevY
		t.Box, t.HasBox = f.Box, f.HasBox
		t.EdgeModeWrap, t.Valid = f.EdgeModeWrap, f.Valid
	case *Circle:
		t := to.(*Circle)
		t.Cx, t.Cy, t.R = f.Cx, f.Cy, f.R
	case *Ellipse:
		t := to.(*Ellipse)
		t.Cx, t.Cy, t.Rx, t.Ry = f.Cx, f.Cy, f.Rx, f.Ry
	case *Rect:
		t := to.(*Rect)
		t.X, t.Y, t.W, t.H = f.X, f.Y, f.W, f.H
		t.Rx, t.Ry, t.hasRx, t.hasRy = f.Rx, f.Ry, f.hasRx, f.hasRy
	case *Line:
		t := to.(*Line)
		t.X1, t.Y1, t.X2, t.Y2 = f.X1, f.Y1, f.X2, f.Y2
	case *Path:
		t := to.(*Path)
		t.D = f.D
		t.Path = append(t.Path[:0], f.Path...)
	case *Polygon:
		t := to.(*Polygon)
		t.Points = append([]float64(nil), f.Points...)
		t.Path = append(t.Path[:0], f.Path...)
	case *Polyline:
		t := to.(*Polyline)
		t.Points = append([]float64(nil), f.Points...)
		t.Path = append(t.Path[:0], f.Path...)
	case *Image:
		t := to.(*Image)
		t.X, t.Y, t.W, t.H, t.Href = f.X, f.Y, f.W, f.H, f.Href
	case *Text:
		t := to.(*Text)
		t.X, t.Y, t.FontSize = f.X, f.Y, f.FontSize
		t.FontFamily, t.FontStyle, t.FontWeight = f.FontFamily, f.FontStyle, f.FontWeight
		t.Variant, t.Anchor, t.Data = f.Variant, f.Anchor, f.Data
	case *Use:
		t := to.(*Use)
		t.X, t.Y, t.W, t.H = f.X, f.Y, f.W, f.H
		t.WidthSet, t.HeightSet = f.WidthSet, f.HeightSet
		t.Href, t.Symbol = f.Href, f.Symbol
	}
}

// updateComposites binds every clip-path, mask and filter url to its
// target node. Absent or mistyped targets leave the composite
// inactive.
func (p *parser) updateComposites() {
	bind := func(n Node) bool {
		s := &n.Base().Style
		if s.ClipPath.URL != "" && s.ClipPath.Node == nil {
			if t, ok := p.findNodeByID(s.ClipPath.URL).(*ClipPath); ok {
				s.ClipPath.Node = t
			} else {
				p.warn("dangling clip-path reference", zap.String("url", s.ClipPath.URL))
			}
		}
		if s.Mask.URL != "" && s.Mask.Node == nil {
			if t, ok := p.findNodeByID(s.Mask.URL).(*Mask); ok {
				s.Mask.Node = t
			} else {
				p.warn("dangling mask reference", zap.String("url", s.Mask.URL))
			}
		}
		if s.Filter.URL != "" && s.Filter.Node == nil {
			if t, ok := p.findNodeByID(s.Filter.URL).(*Filter); ok {
				s.Filter.Node = t
			} else {
				p.warn("dangling filter reference", zap.String("url", s.Filter.URL))
			}
		}
		return true
	}
	if p.doc != nil {
		walk(p.doc, bind)
	}
	if p.defs != nil {
		walk(p.defs, bind)
	}
}

// updateStyle is the top-down inheritance walk: every field a node did
// not set comes from the parent's resolved style.
func updateStyle(n Node, parent *Style) {
	s := &n.Base().Style
	if parent != nil {
		styleInherit(s, parent)
	} else {
		resolveCurrentColor(s)
	}
	for _, c := range n.Base().Children {
		updateStyle(c, s)
	}
}

func resolveCurrentColor(s *Style) {
	if s.Fill.Paint.CurColor && s.CurColorSet {
		s.Fill.Paint.Color = s.Color
	}
	if s.Stroke.Paint.CurColor && s.CurColorSet {
		s.Stroke.Paint.Color = s.Color
	}
}

// updateGradients hands every gradient-referencing paint its own
// resolved clone. Href inheritance applies one hop from the named
// base.
func (p *parser) updateGradients(root Node) {
	walk(root, func(n Node) bool {
		s := &n.Base().Style
		p.resolvePaintGradient(&s.Fill.Paint, s.Fill.Opacity)
		p.resolvePaintGradient(&s.Stroke.Paint, s.Stroke.Opacity)
		return true
	})
}

func (p *parser) resolvePaintGradient(paint *Paint, opacity uint8) {
	if paint.URL == "" || paint.Gradient != nil {
		return
	}
	g := p.findGradient(paint.URL)
	if g == nil {
		p.warn("dangling gradient reference", zap.String("url", paint.URL))
		return
	}
	clone := g.Clone()
	if clone.Ref != "" {
		base := p.findGradient(clone.Ref)
		if base == nil {
			p.warn("dangling gradient href", zap.String("href", clone.Ref))
		}
		clone.inheritFrom(base)
	}
	clone.Bounds = p.vp
	clone.multiplyOpacity(opacity)
	paint.Gradient = clone
}
