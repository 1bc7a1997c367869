// Copyright 2024 The svgdom Authors. All rights reserved.
//
// Process-wide font registry. @font-face rules with embedded data feed
// it during parsing; text nodes resolve their face against it, falling
// back to the Go fonts by weight, style and variant.
package svgdom

import (
	"encoding/base64"
	"strings"
	"sync"

	"github.com/aymerick/douceur/css"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

var fontRegistry = struct {
	sync.RWMutex
	fonts map[string]*truetype.Font
}{fonts: map[string]*truetype.Font{}}

// RegisterFont parses raw TrueType data and makes it available to
// text nodes under the given family name.
func RegisterFont(family string, data []byte) error {
	f, err := truetype.Parse(data)
	if err != nil {
		return err
	}
	fontRegistry.Lock()
	fontRegistry.fonts[strings.ToLower(strings.TrimSpace(family))] = f
	fontRegistry.Unlock()
	return nil
}

// registerFontFace handles one @font-face rule. Only embedded base64
// data sources are supported; external urls are skipped with a log.
func (p *parser) registerFontFace(decls []*css.Declaration) {
	var family, src string
	for _, d := range decls {
		switch strings.ToLower(strings.TrimSpace(d.Property)) {
		case "font-family":
			family = strings.Trim(strings.TrimSpace(d.Value), "'\"")
		case "src":
			src = strings.TrimSpace(d.Value)
		}
	}
	if family == "" || src == "" {
		return
	}
	idx := strings.Index(src, "base64,")
	if idx < 0 || !strings.Contains(src, "data:") {
		p.warn("font-face source not embedded", zap.String("family", family))
		return
	}
	payload := strings.TrimSuffix(strings.TrimSpace(src[idx+len("base64,"):]), ")")
	payload = strings.Trim(payload, "'\"")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		p.warn("undecodable font-face data", zap.String("family", family), zap.Error(err))
		return
	}
	if err := RegisterFont(family, data); err != nil {
		p.warn("unparsable font-face data", zap.String("family", family), zap.Error(err))
	}
}

// FaceFor resolves a font face for the given family and styling,
// preferring registered fonts and falling back to the Go fonts.
func FaceFor(family, weight, style, variant string, size float64) font.Face {
	if size <= 0 {
		size = 10
	}
	fontRegistry.RLock()
	var found *truetype.Font
	for _, name := range strings.Split(family, ",") {
		if f, ok := fontRegistry.fonts[strings.ToLower(strings.TrimSpace(name))]; ok {
			found = f
			break
		}
	}
	fontRegistry.RUnlock()
	if found != nil {
		return truetype.NewFace(found, &truetype.Options{Size: size})
	}

	var raw []byte
	switch {
	case variant == "small-caps" && style == "italic":
		raw = gosmallcapsitalic.TTF
	case variant == "small-caps":
		raw = gosmallcaps.TTF
	case style == "italic" && weight == "bold":
		raw = gobolditalic.TTF
	case style == "italic":
		raw = goitalic.TTF
	case weight == "bold":
		raw = gobold.TTF
	default:
		raw = goregular.TTF
	}
	ff, err := truetype.Parse(raw)
	if err != nil {
		return nil
	}
	return truetype.NewFace(ff, &truetype.Options{Size: size})
}

// Face resolves the text node's effective font face.
func (t *Text) Face() font.Face {
	return FaceFor(t.FontFamily, t.FontWeight, t.FontStyle, t.Variant, t.FontSize)
}
