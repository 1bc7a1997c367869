// Copyright 2024 The svgdom Authors. All rights reserved.
//
// The public loading surface. Opening a document runs a cheap
// synchronous header scan that pins down the viewport, then hands the
// body parse to the shared scheduler; Tree and Close synchronize on
// completion. The resolved tree is handed over exactly once.
package svgdom

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// ErrNoSVGRoot reports a document with no <svg> element anywhere.
var ErrNoSVGRoot = errors.New("svgdom: no svg root element")

// Fallback canvas for documents that state neither a viewBox nor an
// absolute size, overridable with WithSize.
const defaultFallbackSize = 512

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the diagnostic logger. The loader logs under the
// "SVG" name.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithErrorMode selects how recoverable malformed input is reported.
func WithErrorMode(mode ErrorMode) Option {
	return func(l *Loader) { l.mode = mode }
}

// WithSize sets the fallback viewport used when the document carries
// neither a viewBox nor an absolute width and height.
func WithSize(w, h float64) Option {
	return func(l *Loader) { l.fallbackW, l.fallbackH = w, h }
}

// Loader loads one document at a time. Zero value is not usable; call
// NewLoader.
type Loader struct {
	log  *zap.Logger
	mode ErrorMode

	fallbackW float64
	fallbackH float64

	mu       sync.Mutex
	data     []byte
	vp       viewport
	w, h     float64
	disabled bool
	done     chan struct{}
	tree     *Doc
	taken    bool
	err      error
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		mode:      WarnErrorMode,
		fallbackW: defaultFallbackSize,
		fallbackH: defaultFallbackSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	return l
}

// Open reads and loads the document at path.
func (l *Loader) Open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("svgdom: read %s: %w", path, err)
	}
	return l.OpenBytes(data, false)
}

// OpenBytes loads a document held in memory. With copyData false the
// loader aliases data until Close; the caller must not mutate it.
func (l *Loader) OpenBytes(data []byte, copyData bool) error {
	if copyData {
		data = append([]byte(nil), data...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = data
	l.vp = viewport{}
	l.w, l.h = 0, 0
	l.disabled = false
	l.tree = nil
	l.taken = false
	l.err = nil
	l.done = nil
	return l.load()
}

// header scans for the root element and returns its attributes.
func (l *Loader) header() ([]xml.Attr, error) {
	decoder := xml.NewDecoder(bytes.NewReader(l.data))
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return nil, ErrNoSVGRoot
			}
			return nil, fmt.Errorf("svgdom: header scan: %w", err)
		}
		if se, ok := t.(xml.StartElement); ok && se.Name.Local == "svg" {
			return se.Attr, nil
		}
	}
}

// absoluteLength evaluates a header size attribute with no viewport
// available yet: percentages resolve to 0, which reads as absent.
func absoluteLength(s string, axis lengthAxis) float64 {
	return viewport{}.length(s, axis)
}

func (l *Loader) load() error {
	attrs, err := l.header()
	if err != nil {
		return err
	}

	var vb viewport
	var hasVB bool
	var aw, ah float64
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "viewBox":
			pts, err := numberList(attr.Value, nil)
			if err == nil && len(pts) == 4 {
				vb = viewport{X: pts[0], Y: pts[1], W: pts[2], H: pts[3]}
				hasVB = true
			}
		case "width":
			aw = absoluteLength(attr.Value, horizontalLength)
		case "height":
			ah = absoluteLength(attr.Value, verticalLength)
		}
	}

	switch {
	case hasVB && (math.Abs(vb.W) <= epsilonF || math.Abs(vb.H) <= epsilonF):
		// A degenerate viewBox disables rendering; the load itself
		// succeeds and hands over an empty, display-off document.
		l.log.Named("SVG").Warn("degenerate viewBox, rendering disabled",
			zap.Float64("w", vb.W), zap.Float64("h", vb.H))
		l.disabled = true
		doc := &Doc{NodeBase: NodeBase{Style: defaultStyle()}}
		doc.Style.Display = false
		doc.ViewBox = vb
		doc.HasViewBox = true
		l.tree = doc
		l.done = closedChan()
		return nil

	case hasVB:
		l.vp = vb
		l.w, l.h = vb.W, vb.H
		if aw > 0 {
			l.w = aw
		}
		if ah > 0 {
			l.h = ah
		}
		l.startBody()
		return nil

	case aw > 0 && ah > 0:
		l.vp = viewport{W: aw, H: ah}
		l.w, l.h = aw, ah
		l.startBody()
		return nil

	default:
		// Neither viewBox nor absolute size: the percentage basis is
		// unknowable before parsing, so the body runs here and now
		// against the fallback canvas.
		l.vp = viewport{W: l.fallbackW, H: l.fallbackH}
		l.w, l.h = l.fallbackW, l.fallbackH
		l.runBody()
		l.done = closedChan()
		if l.tree != nil && l.tree.W > 0 && l.tree.H > 0 {
			l.w, l.h = l.tree.W, l.tree.H
		}
		return l.err
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (l *Loader) startBody() {
	done := make(chan struct{})
	l.done = done
	schedule(func() {
		defer close(done)
		l.runBody()
	})
}

// runBody executes the full body parse and resolution. Results are
// published before done closes; readers synchronize on wait.
func (l *Loader) runBody() {
	p := newParser(l.log, l.mode, l.vp)
	if err := p.run(l.data); err != nil {
		l.err = err
	}
	l.tree = p.doc
}

func (l *Loader) wait() {
	if l.done != nil {
		<-l.done
	}
}

// Size reports the document size established by the header phase. It
// never blocks on the body parse.
func (l *Loader) Size() (w, h float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w, l.h
}

// Resize rescales the document to w by h with a scale transform on the
// root node. No-op on a disabled or already handed-over document.
func (l *Loader) Resize(w, h float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wait()
	if l.tree == nil || l.w <= 0 || l.h <= 0 {
		return
	}
	m := Identity.Scale(w/l.w, h/l.h)
	if l.tree.Transform != nil {
		m = m.Mult(*l.tree.Transform)
	}
	l.tree.Transform = &m
	l.w, l.h = w, h
}

// Tree waits for the body parse and hands the resolved tree over.
// Ownership moves to the caller: a second call returns nil.
func (l *Loader) Tree() Node {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wait()
	if l.taken || l.tree == nil {
		return nil
	}
	l.taken = true
	t := l.tree
	l.tree = nil
	return t
}

// Close waits for any in-flight parse, releases the document data and
// reports accumulated diagnostics in strict mode.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wait()
	l.data = nil
	l.tree = nil
	return l.err
}
