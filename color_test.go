// Copyright 2024 The svgdom Authors. All rights reserved.
package svgdom

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#fff", color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}, true},
		{"#1a2b3c", color.NRGBA{0x1A, 0x2B, 0x3C, 0xFF}, true},
		{"rgb(255, 0, 0)", color.NRGBA{0xFF, 0, 0, 0xFF}, true},
		{"rgb(100%, 0%, 50%)", color.NRGBA{0xFF, 0, 0x80, 0xFF}, true},
		{"hsl(0, 100%, 50%)", color.NRGBA{0xFF, 0, 0, 0xFF}, true},
		{"hsl(120, 100%, 25%)", color.NRGBA{0, 0x80, 0, 0xFF}, true},
		{"Teal", color.NRGBA{0, 0x80, 0x80, 0xFF}, true},
		{"black", color.NRGBA{0, 0, 0, 0xFF}, true},
		{"#12", color.NRGBA{}, false},
		{"notacolor", color.NRGBA{}, false},
		{"", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := parseColor(tt.in)
		if ok != tt.ok {
			t.Errorf("parseColor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePaint(t *testing.T) {
	p, ok := parsePaint("none")
	require.True(t, ok)
	assert.True(t, p.None)

	p, ok = parsePaint("currentColor")
	require.True(t, ok)
	assert.True(t, p.CurColor)

	p, ok = parsePaint("url(#grad1)")
	require.True(t, ok)
	assert.Equal(t, "grad1", p.URL)

	p, ok = parsePaint(" red ")
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{0xFF, 0, 0, 0xFF}, p.Color)

	_, ok = parsePaint("url(grad1)")
	assert.False(t, ok)

	_, ok = parsePaint("bogus")
	assert.False(t, ok)
}

func TestParseURLRef(t *testing.T) {
	id, ok := parseURLRef(`url("#a")`)
	require.True(t, ok)
	assert.Equal(t, "a", id)

	_, ok = parseURLRef("url(#a")
	assert.False(t, ok)
}
