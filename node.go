// Copyright 2024 The svgdom Authors. All rights reserved.
//
// The resolved document tree. One concrete type per element kind, all
// embedding NodeBase; the tree owns children, while Parent and every
// resolved reference is a non-owning back-pointer valid for the tree's
// lifetime.
package svgdom

import "github.com/srwiley/rasterx"

// NodeKind discriminates the concrete type behind a Node.
type NodeKind uint8

const (
	DocKind NodeKind = iota
	GroupKind
	DefsKind
	SymbolKind
	ClipPathKind
	MaskKind
	CssSheetKind
	FilterKind
	GaussianBlurKind
	CircleKind
	EllipseKind
	RectKind
	LineKind
	PathKind
	PolygonKind
	PolylineKind
	ImageKind
	TextKind
	UseKind
)

var kindNames = [...]string{
	DocKind:          "svg",
	GroupKind:        "g",
	DefsKind:         "defs",
	SymbolKind:       "symbol",
	ClipPathKind:     "clipPath",
	MaskKind:         "mask",
	CssSheetKind:     "style",
	FilterKind:       "filter",
	GaussianBlurKind: "feGaussianBlur",
	CircleKind:       "circle",
	EllipseKind:      "ellipse",
	RectKind:         "rect",
	LineKind:         "line",
	PathKind:         "path",
	PolygonKind:      "polygon",
	PolylineKind:     "polyline",
	ImageKind:        "image",
	TextKind:         "text",
	UseKind:          "use",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type Node interface {
	Base() *NodeBase
	Kind() NodeKind
}

// NodeBase carries what every element has: identity, transform, style
// and tree links.
type NodeBase struct {
	ID        string
	Transform *Matrix2D
	Style     Style
	Parent    Node
	Children  []Node
}

func (b *NodeBase) Base() *NodeBase { return b }

func (b *NodeBase) appendChild(child Node) {
	b.Children = append(b.Children, child)
}

// walk visits n and its subtree in document order, stopping early when
// fn returns false.
func walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Base().Children {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// findByID returns the first node in document order with the given
// id. Ids are not enforced unique; first match wins.
func findByID(root Node, id string) Node {
	if root == nil || id == "" {
		return nil
	}
	var found Node
	walk(root, func(n Node) bool {
		if n.Base().ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// contains reports whether target sits in root's subtree.
func contains(root, target Node) bool {
	if root == nil || target == nil {
		return false
	}
	ok := true
	walk(root, func(n Node) bool {
		if n == target {
			ok = false
			return false
		}
		return true
	})
	return !ok
}

// isAncestor reports whether anc appears on n's parent chain,
// n itself included.
func isAncestor(n Node, anc Node) bool {
	for cur := n; cur != nil; cur = cur.Base().Parent {
		if cur == anc {
			return true
		}
	}
	return false
}

type Doc struct {
	NodeBase
	W, H       float64
	ViewBox    viewport
	HasViewBox bool
	Align      AspectRatioAlign
	MeetSlice  AspectRatioMeetOrSlice
}

func (*Doc) Kind() NodeKind { return DocKind }

type Group struct {
	NodeBase
}

func (*Group) Kind() NodeKind { return GroupKind }

type Defs struct {
	NodeBase
	Gradients []*Gradient
}

func (*Defs) Kind() NodeKind { return DefsKind }

type Symbol struct {
	NodeBase
	ViewBox         viewport
	W, H            float64
	Align           AspectRatioAlign
	MeetSlice       AspectRatioMeetOrSlice
	HasViewBox      bool
	HasWidth        bool
	HasHeight       bool
	OverflowVisible bool
}

func (*Symbol) Kind() NodeKind { return SymbolKind }

type ClipPath struct {
	NodeBase
	UserSpace bool
}

func (*ClipPath) Kind() NodeKind { return ClipPathKind }

// MaskType selects how mask pixels become coverage.
type MaskType uint8

const (
	MaskLuminance MaskType = iota
	MaskAlpha
)

type Mask struct {
	NodeBase
	Type MaskType
}

func (*Mask) Kind() NodeKind { return MaskKind }

// CssSheet is the singleton node behind <style>; a second style
// element feeds the same sheet.
type CssSheet struct {
	NodeBase
	Sheet *styleSheet
}

func (*CssSheet) Kind() NodeKind { return CssSheetKind }

// filterBox is a filter region: four coordinates plus flags recording
// which of them were given as percentages.
type filterBox struct {
	X, Y, W, H float64
	Pct        [4]bool
}

type Filter struct {
	NodeBase
	Box                filterBox
	HasBox             bool
	FilterUserSpace    bool
	PrimitiveUserSpace bool
}

func (*Filter) Kind() NodeKind { return FilterKind }

type GaussianBlur struct {
	NodeBase
	StdDevX, StdDevY float64
	Box              filterBox
	HasBox           bool
	EdgeModeWrap     bool
	Valid            bool
}

func (*GaussianBlur) Kind() NodeKind { return GaussianBlurKind }

type Circle struct {
	NodeBase
	Cx, Cy, R float64
}

func (*Circle) Kind() NodeKind { return CircleKind }

type Ellipse struct {
	NodeBase
	Cx, Cy, Rx, Ry float64
}

func (*Ellipse) Kind() NodeKind { return EllipseKind }

type Rect struct {
	NodeBase
	X, Y, W, H float64
	Rx, Ry     float64
	hasRx      bool
	hasRy      bool
}

func (*Rect) Kind() NodeKind { return RectKind }

type Line struct {
	NodeBase
	X1, Y1, X2, Y2 float64
}

func (*Line) Kind() NodeKind { return LineKind }

type Path struct {
	NodeBase
	D    string
	Path rasterx.Path
}

func (*Path) Kind() NodeKind { return PathKind }

type Polygon struct {
	NodeBase
	Points []float64
	Path   rasterx.Path
}

func (*Polygon) Kind() NodeKind { return PolygonKind }

type Polyline struct {
	NodeBase
	Points []float64
	Path   rasterx.Path
}

func (*Polyline) Kind() NodeKind { return PolylineKind }

type Image struct {
	NodeBase
	X, Y, W, H float64
	Href       string
}

func (*Image) Kind() NodeKind { return ImageKind }

type Text struct {
	NodeBase
	X, Y       float64
	FontSize   float64
	FontFamily string
	FontStyle  string
	FontWeight string
	Variant    string
	Anchor     string
	Data       string
}

func (*Text) Kind() NodeKind { return TextKind }

type Use struct {
	NodeBase
	X, Y, W, H float64
	WidthSet   bool
	HeightSet  bool
	Href       string
	Symbol     *Symbol
}

func (*Use) Kind() NodeKind { return UseKind }
