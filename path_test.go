// Copyright 2024 The svgdom Authors. All rights reserved.
package svgdom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePath(t *testing.T) {
	var c pathScanner
	for _, d := range []string{
		"M10 10 L90 10 L90 90 Z",
		"m10 10 l80 0 l0 80 z",
		"M0 0 C10 0 20 10 20 20",
		"M0 0 Q10 0 10 10 T20 20",
		"M0 0 S10 0 10 10",
		"M0 0 H50 V50",
		"M50 50 A25 25 0 0 1 100 50",
	} {
		path, err := c.compilePath(d)
		require.NoError(t, err, d)
		assert.NotEmpty(t, path, d)
	}
}

func TestCompilePathErrors(t *testing.T) {
	var c pathScanner
	for _, d := range []string{
		"X10 10",
		"M10",
		"M0 0 Q5 5",
	} {
		if _, err := c.compilePath(d); err == nil {
			t.Errorf("compilePath(%q) expected error", d)
		}
	}
}

func TestCompilePathDetached(t *testing.T) {
	var c pathScanner
	a, err := c.compilePath("M0 0 L10 10")
	require.NoError(t, err)
	b, err := c.compilePath("M5 5 L6 6 L7 7")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}

func TestCompilePolyPath(t *testing.T) {
	closed := compilePolyPath([]float64{0, 0, 10, 0, 10, 10}, true)
	open := compilePolyPath([]float64{0, 0, 10, 0, 10, 10}, false)
	assert.NotEmpty(t, closed)
	assert.NotEmpty(t, open)
	assert.Greater(t, len(closed), len(open))

	assert.Nil(t, compilePolyPath([]float64{0, 0}, true))
	assert.Nil(t, compilePolyPath([]float64{0, 0, 1}, true))
}
