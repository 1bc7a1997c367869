// Copyright 2024 The svgdom Authors. All rights reserved.
package svgdom

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestRegisterFont(t *testing.T) {
	require.Error(t, RegisterFont("broken", []byte("not a font")))
	require.NoError(t, RegisterFont("Go Regular Test", goregular.TTF))

	face := FaceFor("Missing, go regular test", "", "", "", 14)
	assert.NotNil(t, face)
}

func TestFaceForFallbacks(t *testing.T) {
	for _, tt := range []struct{ weight, style, variant string }{
		{"", "", ""},
		{"bold", "", ""},
		{"", "italic", ""},
		{"bold", "italic", ""},
		{"", "", "small-caps"},
		{"", "italic", "small-caps"},
	} {
		face := FaceFor("no-such-family", tt.weight, tt.style, tt.variant, 12)
		assert.NotNil(t, face, "weight=%q style=%q variant=%q", tt.weight, tt.style, tt.variant)
	}
}

func TestFontFaceRule(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(goregular.TTF)
	parseDoc(t, fmt.Sprintf(`<svg viewBox="0 0 10 10">
		<style>
			@font-face { font-family: 'Embedded Face'; src: url(data:font/ttf;base64,%s); }
			@font-face { font-family: 'External Face'; src: url(fonts/x.woff2); }
		</style>
	</svg>`, payload))

	fontRegistry.RLock()
	_, embedded := fontRegistry.fonts["embedded face"]
	_, external := fontRegistry.fonts["external face"]
	fontRegistry.RUnlock()
	assert.True(t, embedded)
	assert.False(t, external)
}

func TestTextFace(t *testing.T) {
	_, doc := parseDoc(t, `<svg viewBox="0 0 100 100">
		<text x="1" y="2" font="italic bold 14px Georgia, serif">x</text>
	</svg>`)

	txt := findKind(doc, TextKind).(*Text)
	assert.Equal(t, "italic", txt.FontStyle)
	assert.Equal(t, "bold", txt.FontWeight)
	assert.Equal(t, 14.0, txt.FontSize)
	assert.NotNil(t, txt.Face())
}
