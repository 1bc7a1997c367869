// Copyright 2024 The svgdom Authors. All rights reserved.
package svgdom

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// parseDoc runs a full parse against a 100x100 viewport.
func parseDoc(t *testing.T, svg string) (*parser, *Doc) {
	t.Helper()
	p := newParser(zaptest.NewLogger(t), WarnErrorMode, viewport{W: 100, H: 100})
	require.NoError(t, p.run([]byte(svg)))
	require.NotNil(t, p.doc)
	return p, p.doc
}

func findKind(root Node, kind NodeKind) Node {
	var found Node
	walk(root, func(n Node) bool {
		if n.Kind() == kind {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestParseBasicTree(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<g id="layer"><rect x="10" y="20" width="30" height="40"/></g>
	</svg>`)

	g := findKind(doc, GroupKind)
	require.NotNil(t, g)
	require.Equal(t, "layer", g.Base().ID)

	r, ok := findKind(doc, RectKind).(*Rect)
	require.True(t, ok)
	require.Equal(t, 10.0, r.X)
	require.Equal(t, 20.0, r.Y)
	require.Equal(t, 30.0, r.W)
	require.Equal(t, 40.0, r.H)
	require.Same(t, g, r.Parent)
}

func TestRectRadiusMirroring(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<rect id="a" width="10" height="10" ry="5"/>
		<rect id="b" width="10" height="10" rx="3" ry="7"/>
	</svg>`)

	a := findByID(doc, "a").(*Rect)
	require.Equal(t, 5.0, a.Rx)
	require.Equal(t, 5.0, a.Ry)

	b := findByID(doc, "b").(*Rect)
	require.Equal(t, 3.0, b.Rx)
	require.Equal(t, 7.0, b.Ry)
}

func TestUnknownElementSkipped(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<wobble><circle r="1"/></wobble>
		<rect width="5" height="5"/>
	</svg>`)

	// The unknown wrapper vanishes but parsing continues; its children
	// land in the enclosing container.
	require.Nil(t, findKind(doc, GroupKind))
	require.NotNil(t, findKind(doc, CircleKind))
	require.NotNil(t, findKind(doc, RectKind))
}

func TestOversizedTagSkipped(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<anElementNameWellBeyondAnyRealTag/>
		<rect width="5" height="5"/>
	</svg>`)
	require.Len(t, doc.Children, 1)
}

func TestStrayLeafChildrenGoToDefs(t *testing.T) {
	p, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<rect width="5" height="5"><circle id="stray" r="1"/></rect>
	</svg>`)

	require.Nil(t, findKind(doc, CircleKind))
	require.NotNil(t, p.defs)
	require.NotNil(t, findByID(p.defs, "stray"))
}

func TestNestedSVGBecomesGroup(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<svg x="5"><rect width="1" height="1"/></svg>
	</svg>`)

	g := findKind(doc, GroupKind)
	require.NotNil(t, g)
	require.NotNil(t, findKind(g, RectKind))
}

func TestTextAccumulation(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<text x="3" y="4" font-size="12">hello there</text>
	</svg>`)

	txt := findKind(doc, TextKind).(*Text)
	require.Equal(t, "hello there", txt.Data)
	require.Equal(t, 12.0, txt.FontSize)
}

func TestDefsGradientCollection(t *testing.T) {
	p, _ := parseDoc(t, `<svg viewBox="0 0 100 100">
		<defs>
			<linearGradient id="lg"><stop offset="0" stop-color="red"/></linearGradient>
			<radialGradient id="rg"/>
		</defs>
	</svg>`)

	require.Len(t, p.gradients, 2)
	require.NotNil(t, p.defs)
	require.Len(t, p.defs.Gradients, 2)
	require.Equal(t, "lg", p.gradients[0].ID)
	require.Len(t, p.gradients[0].Stops, 1)
}

func TestStopCurrentColor(t *testing.T) {
	p, _ := parseDoc(t, `<svg viewBox="0 0 100 100">
		<g color="#102030">
			<linearGradient id="g"><stop offset="0" stop-color="currentColor"/></linearGradient>
		</g>
	</svg>`)

	require.Len(t, p.gradients, 1)
	stop := p.gradients[0].Stops[0]
	r, g, b, _ := stop.StopColor.RGBA()
	require.Equal(t, uint32(0x10), r>>8)
	require.Equal(t, uint32(0x20), g>>8)
	require.Equal(t, uint32(0x30), b>>8)
}

func TestLateStyleBlockStillApplies(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<rect class="late" width="5" height="5"/>
		<style>.late { stroke-width: 9 }</style>
	</svg>`)

	r := findKind(doc, RectKind).(*Rect)
	require.Equal(t, 9.0, r.Style.Stroke.Width)
}
