// Copyright 2024 The svgdom Authors. All rights reserved.
package svgdom

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.NRGBA{0xFF, 0, 0, 0xFF}
	green = color.NRGBA{0, 0x80, 0, 0xFF}
	blue  = color.NRGBA{0, 0, 0xFF, 0xFF}
)

func fillOf(n Node) color.NRGBA {
	return n.Base().Style.Fill.Paint.Color
}

func TestCascadePrecedence(t *testing.T) {
	// Inline style beats the class rule, which beats the presentation
	// attribute.
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<style>.a { fill: green }</style>
		<rect class="a" fill="red" style="fill:blue" width="5" height="5"/>
	</svg>`)
	assert.Equal(t, blue, fillOf(findKind(doc, RectKind)))
}

func TestCascadeImportantWins(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<style>.a { fill: green !important }</style>
		<rect class="a" fill="red" style="fill:blue" width="5" height="5"/>
	</svg>`)
	assert.Equal(t, green, fillOf(findKind(doc, RectKind)))
}

func TestCascadeCSSOverPresentation(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<style>rect { fill: green }</style>
		<rect fill="red" width="5" height="5"/>
	</svg>`)
	assert.Equal(t, green, fillOf(findKind(doc, RectKind)))
}

func TestInheritance(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<g fill="red" stroke-width="3" opacity="0.5" display="none">
			<rect width="5" height="5"/>
			<circle fill="blue" r="2"/>
		</g>
	</svg>`)

	r := findKind(doc, RectKind)
	assert.Equal(t, red, fillOf(r))
	assert.Equal(t, 3.0, r.Base().Style.Stroke.Width)

	// Display and scalar opacity apply to the group alone.
	assert.True(t, r.Base().Style.Display)
	assert.Equal(t, uint8(255), r.Base().Style.Opacity)

	// An explicit child value survives inheritance.
	assert.Equal(t, blue, fillOf(findKind(doc, CircleKind)))
}

func TestCurrentColorPaint(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<g color="red">
			<rect fill="currentColor" width="5" height="5"/>
		</g>
	</svg>`)
	assert.Equal(t, red, fillOf(findKind(doc, RectKind)))
}

func TestNegativeMiterLimitDiscarded(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<rect stroke-miterlimit="-2" width="5" height="5"/>
	</svg>`)
	assert.Equal(t, 4.0, findKind(doc, RectKind).Base().Style.Stroke.MiterLimit)
}

func TestNegativeDashDiscarded(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<rect stroke-dasharray="4 -2" width="5" height="5"/>
	</svg>`)
	assert.Nil(t, findKind(doc, RectKind).Base().Style.Stroke.Dash)
}

func TestPaintOrderAttribute(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<rect paint-order="stroke" width="5" height="5"/>
	</svg>`)
	assert.False(t, findKind(doc, RectKind).Base().Style.FillFirst)
}

func TestDefaultStyle(t *testing.T) {
	s := defaultStyle()
	require.Equal(t, color.NRGBA{0, 0, 0, 0xFF}, s.Fill.Paint.Color)
	require.Equal(t, NonZeroRule, s.Fill.Rule)
	require.True(t, s.Stroke.Paint.None)
	require.Equal(t, 1.0, s.Stroke.Width)
	require.Equal(t, 4.0, s.Stroke.MiterLimit)
	require.True(t, s.Display)
	require.True(t, s.FillFirst)
}

func TestCompositeTargetsStartHidden(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<clipPath id="c"><rect width="5" height="5"/></clipPath>
		<filter id="f"><feGaussianBlur stdDeviation="2"/></filter>
	</svg>`)

	assert.False(t, findKind(doc, ClipPathKind).Base().Style.Display)
	assert.False(t, findKind(doc, FilterKind).Base().Style.Display)
	assert.False(t, findKind(doc, GaussianBlurKind).Base().Style.Display)
}
