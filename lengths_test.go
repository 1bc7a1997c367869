// Copyright 2024 The svgdom Authors. All rights reserved.
package svgdom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthUnits(t *testing.T) {
	vp := viewport{W: 100, H: 50}
	tests := []struct {
		in   string
		axis lengthAxis
		want float64
	}{
		{"10", horizontalLength, 10},
		{"10px", horizontalLength, 10},
		{"1in", horizontalLength, 96},
		{"2.54cm", horizontalLength, 96},
		{"25.4mm", horizontalLength, 96},
		{"72pt", horizontalLength, 96},
		{"6pc", horizontalLength, 96},
		{"10%", horizontalLength, 10},
		{"10%", verticalLength, 5},
		{"50%", otherLength, 50},
		{"", horizontalLength, 0},
		{"banana", horizontalLength, 0},
	}
	for _, tt := range tests {
		got := vp.length(tt.in, tt.axis)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("length(%q, %d) = %v, want %v", tt.in, tt.axis, got, tt.want)
		}
	}
}

func TestLengthDiagonalBasis(t *testing.T) {
	vp := viewport{W: 100, H: 100}
	// hypot(100,100)/sqrt2 is 100, so diagonal percentages behave like
	// an axis of a square viewport.
	assert.InDelta(t, 10, vp.length("10%", diagonalLength), 1e-9)
}

func TestParseOpacity(t *testing.T) {
	tests := []struct {
		in   string
		want uint8
	}{
		{"0", 0},
		{"1", 255},
		{"0.5", 128},
		{"50%", 128},
		{"150%", 255},
		{"-1", 0},
		{"2", 255},
		{"garbage", 255},
	}
	for _, tt := range tests {
		if got := parseOpacity(tt.in); got != tt.want {
			t.Errorf("parseOpacity(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseOffset(t *testing.T) {
	f, ok := parseOffset("0.25")
	require.True(t, ok)
	assert.InDelta(t, 0.25, f, 1e-9)

	f, ok = parseOffset("40%")
	require.True(t, ok)
	assert.InDelta(t, 0.4, f, 1e-9)

	f, ok = parseOffset("150%")
	require.True(t, ok)
	assert.InDelta(t, 1, f, 1e-9)

	_, ok = parseOffset("0.5garbage")
	assert.False(t, ok)
}

func TestNumberList(t *testing.T) {
	pts, err := numberList("0 0, 100.5 -7 1e2", nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 100.5, -7, 100}, pts)
}

func TestParseDashArray(t *testing.T) {
	vp := viewport{W: 100, H: 100}

	dashes, ok := vp.parseDashArray("4 1, 2")
	require.True(t, ok)
	assert.Equal(t, []float64{4, 1, 2}, dashes)

	dashes, ok = vp.parseDashArray("none")
	require.True(t, ok)
	assert.Nil(t, dashes)

	// One negative entry poisons the whole pattern.
	_, ok = vp.parseDashArray("4 -1 2")
	assert.False(t, ok)

	dashes, ok = vp.parseDashArray("10%")
	require.True(t, ok)
	assert.InDelta(t, 10, dashes[0], 1e-9)
}

func TestParsePaintOrder(t *testing.T) {
	assert.True(t, parsePaintOrder(""))
	assert.True(t, parsePaintOrder("normal"))
	assert.True(t, parsePaintOrder("fill stroke markers"))
	assert.False(t, parsePaintOrder("stroke fill"))
	assert.False(t, parsePaintOrder("markers stroke"))
}

func TestParsePreserveAspectRatio(t *testing.T) {
	align, meet := parsePreserveAspectRatio("")
	assert.Equal(t, AlignXMidYMid, align)
	assert.Equal(t, AspectRatioMeet, meet)

	align, meet = parsePreserveAspectRatio("xMinYMax slice")
	assert.Equal(t, AlignXMinYMax, align)
	assert.Equal(t, AspectRatioSlice, meet)

	align, _ = parsePreserveAspectRatio("none")
	assert.Equal(t, AlignNone, align)
}
