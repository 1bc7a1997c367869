// Copyright 2024 The svgdom Authors. All rights reserved.
package svgdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseForwardReference(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<use href="#c"/>
		<circle id="c" r="5" fill="green"/>
	</svg>`)

	u := findKind(doc, UseKind).(*Use)
	require.Len(t, u.Children, 1)
	clone, ok := u.Children[0].(*Circle)
	require.True(t, ok)
	assert.Equal(t, 5.0, clone.R)
	assert.Equal(t, green, fillOf(clone))
}

func TestUseAncestorCycleDropped(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<g id="a"><use href="#a"/></g>
	</svg>`)

	u := findKind(doc, UseKind).(*Use)
	assert.Empty(t, u.Children)
}

func TestUseMutualCycleDropped(t *testing.T) {
	// Each target holds the other pending use, so neither ever becomes
	// cloneable and both drop once the worklist stops progressing.
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<g id="a"><use href="#b"/></g>
		<g id="b"><use href="#a"/></g>
	</svg>`)

	walk(doc, func(n Node) bool {
		if u, ok := n.(*Use); ok {
			assert.Empty(t, u.Children)
		}
		return true
	})
}

func TestUseChainedResolution(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<use id="outer" href="#mid"/>
		<g id="mid"><use href="#leaf"/></g>
		<rect id="leaf" width="5" height="5"/>
	</svg>`)

	outer := findByID(doc, "outer").(*Use)
	require.Len(t, outer.Children, 1)
	// The cloned group carries the resolved inner use, rect included.
	assert.NotNil(t, findKind(outer.Children[0], RectKind))
}

func TestUseCloneStyling(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<use id="u1" href="#plain" fill="red"/>
		<use id="u2" href="#styled" fill="red"/>
		<rect id="plain" width="5" height="5"/>
		<rect id="styled" fill="green" width="5" height="5"/>
	</svg>`)

	// The clone inherits from the referencing node when the target set
	// nothing of its own.
	u1 := findByID(doc, "u1").(*Use)
	require.Len(t, u1.Children, 1)
	assert.Equal(t, red, fillOf(u1.Children[0]))

	// An explicit target value survives.
	u2 := findByID(doc, "u2").(*Use)
	require.Len(t, u2.Children, 1)
	assert.Equal(t, green, fillOf(u2.Children[0]))

	// Originals are untouched.
	assert.Equal(t, green, fillOf(findByID(doc, "styled")))
}

func TestUseCloneIsIndependent(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<use href="#r"/>
		<rect id="r" x="1" width="5" height="5"/>
	</svg>`)

	u := findKind(doc, UseKind).(*Use)
	orig := findByID(doc, "r").(*Rect)
	clone := u.Children[0].(*Rect)
	require.NotSame(t, orig, clone)

	clone.X = 42
	assert.Equal(t, 1.0, orig.X)
	assert.Same(t, u, clone.Parent)
}

func TestUseTransformFolding(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<use href="#r" x="10" y="20"/>
		<rect id="r" width="5" height="5"/>
	</svg>`)

	u := findKind(doc, UseKind).(*Use)
	require.NotNil(t, u.Transform)
	x, y := u.Transform.Transform(0, 0)
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)
}

func TestUseSymbolRecordedNotCloned(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<use href="#s"/>
		<symbol id="s" viewBox="0 0 10 10"><rect width="5" height="5"/></symbol>
	</svg>`)

	u := findKind(doc, UseKind).(*Use)
	require.NotNil(t, u.Symbol)
	assert.True(t, u.Symbol.HasViewBox)
	assert.Empty(t, u.Children)
}

func TestCompositeBinding(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<clipPath id="cp"><rect width="5" height="5"/></clipPath>
		<mask id="m" mask-type="alpha"><rect width="5" height="5"/></mask>
		<rect id="target" clip-path="url(#cp)" mask="url(#m)" width="9" height="9"/>
		<rect id="dangling" clip-path="url(#nope)" width="9" height="9"/>
	</svg>`)

	s := findByID(doc, "target").Base().Style
	require.NotNil(t, s.ClipPath.Node)
	assert.Equal(t, ClipPathKind, s.ClipPath.Node.Kind())
	require.NotNil(t, s.Mask.Node)
	assert.Equal(t, MaskAlpha, s.Mask.Node.(*Mask).Type)

	assert.Nil(t, findByID(doc, "dangling").Base().Style.ClipPath.Node)
}

func TestFilterBinding(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<filter id="f" x="-20%" y="-20%" width="140%" height="140%">
			<feGaussianBlur stdDeviation="3 5"/>
		</filter>
		<rect filter="url(#f)" width="9" height="9"/>
	</svg>`)

	r := findKind(doc, RectKind)
	f, ok := r.Base().Style.Filter.Node.(*Filter)
	require.True(t, ok)
	assert.True(t, f.HasBox)
	assert.InDelta(t, -0.2, f.Box.X, 1e-9)
	assert.True(t, f.Box.Pct[0])

	blur := findKind(f, GaussianBlurKind).(*GaussianBlur)
	assert.Equal(t, 3.0, blur.StdDevX)
	assert.Equal(t, 5.0, blur.StdDevY)
	assert.True(t, blur.Valid)
}

func TestGaussianBlurNegativeDeviation(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<filter id="f"><feGaussianBlur stdDeviation="-1"/></filter>
	</svg>`)
	assert.False(t, findKind(doc, GaussianBlurKind).(*GaussianBlur).Valid)
}

func TestGradientEndToEnd(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<defs>
			<linearGradient id="g" gradientUnits="userSpaceOnUse" x2="100">
				<stop offset="0" stop-color="#fff"/>
				<stop offset="1" stop-color="#000"/>
			</linearGradient>
		</defs>
		<rect fill="url(#g)" width="100" height="100"/>
	</svg>`)

	grad := findKind(doc, RectKind).Base().Style.Fill.Paint.Gradient
	require.NotNil(t, grad)
	require.Len(t, grad.Stops, 2)
	assert.True(t, grad.UserSpace)

	x1, y1, x2, y2 := grad.LinearPoints()
	assert.InDelta(t, 0, x1, 1e-9)
	assert.InDelta(t, 0, y1, 1e-9)
	assert.InDelta(t, 100, x2, 1e-9)
	assert.InDelta(t, 0, y2, 1e-9)
}

func TestGradientPerPaintClones(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<linearGradient id="g"><stop offset="0" stop-color="red"/></linearGradient>
		<rect id="a" fill="url(#g)" width="5" height="5"/>
		<rect id="b" fill="url(#g)" fill-opacity="0.5" width="5" height="5"/>
	</svg>`)

	ga := findByID(doc, "a").Base().Style.Fill.Paint.Gradient
	gb := findByID(doc, "b").Base().Style.Fill.Paint.Gradient
	require.NotNil(t, ga)
	require.NotNil(t, gb)
	require.NotSame(t, ga, gb)

	assert.InDelta(t, 1.0, ga.Stops[0].Opacity, 1e-9)
	assert.InDelta(t, 0.5, gb.Stops[0].Opacity, 0.01)
}

func TestGradientHrefOneHop(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<linearGradient id="base">
			<stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/>
		</linearGradient>
		<linearGradient id="mid" href="#base"/>
		<linearGradient id="far" href="#mid"/>
		<rect id="a" fill="url(#mid)" width="5" height="5"/>
		<rect id="b" fill="url(#far)" width="5" height="5"/>
	</svg>`)

	// One hop lands the base stops.
	ga := findByID(doc, "a").Base().Style.Fill.Paint.Gradient
	require.NotNil(t, ga)
	assert.Len(t, ga.Stops, 2)

	// Two hops away, the chain is not chased.
	gb := findByID(doc, "b").Base().Style.Fill.Paint.Gradient
	require.NotNil(t, gb)
	assert.Empty(t, gb.Stops)
}

func TestDanglingGradientLeavesPaint(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<rect fill="url(#ghost)" width="5" height="5"/>
	</svg>`)

	p := findKind(doc, RectKind).Base().Style.Fill.Paint
	assert.Nil(t, p.Gradient)
	assert.Equal(t, "ghost", p.URL)
}

func TestResolveIdempotent(t *testing.T) {
	p, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<use href="#c"/>
		<circle id="c" r="5"/>
		<rect fill="url(#g)" width="5" height="5"/>
		<linearGradient id="g"><stop offset="0" stop-color="red"/></linearGradient>
	</svg>`)

	u := findKind(doc, UseKind).(*Use)
	require.Len(t, u.Children, 1)
	grad := findKind(doc, RectKind).Base().Style.Fill.Paint.Gradient

	require.NoError(t, p.resolve())
	assert.Len(t, u.Children, 1)
	assert.Same(t, grad, findKind(doc, RectKind).Base().Style.Fill.Paint.Gradient)
}
