// Copyright 2024 The svgdom Authors. All rights reserved.
//
// Compiles svg path data into rasterx paths. Off-axis elliptical arcs
// are approximated with cubic beziers following L. Maisonobe,
// "Drawing an elliptical arc using polylines, quadratic or cubic
// Bezier curves", 2003.
// https://www.spaceroots.org/documents/elllipse/elliptical-arc.pdf
package svgdom

import (
	"errors"
	"math"
	"unicode"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var (
	errParamMismatch  = errors.New("param mismatch")
	errCommandUnknown = errors.New("unknown path command")
)

// maxArcDx is the maximum radians a cubic spline may span when
// approximating an off-axis ellipse.
const maxArcDx = math.Pi / 8

// pathScanner decodes one path data string into a rasterx.Path. The
// zero value is ready after init.
type pathScanner struct {
	path                   rasterx.Path
	placeX, placeY         float64
	cntlPtX, cntlPtY       float64
	pathStartX, pathStartY fixed.Int26_6
	points                 []float64
	lastKey                byte
	inPath                 bool
}

func (c *pathScanner) init() {
	c.placeX = 0
	c.placeY = 0
	c.points = c.points[:0]
	c.lastKey = ' '
	c.path.Clear()
	c.inPath = false
}

func fixedPt(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

func reflectPt(px, py, rx, ry float64) (x, y float64) {
	return px*2 - rx, py*2 - ry
}

func (c *pathScanner) valsToAbs(last float64) {
	for i := 0; i < len(c.points); i++ {
		last += c.points[i]
		c.points[i] = last
	}
}

func (c *pathScanner) pointsToAbs(sz int) {
	lastX := c.placeX
	lastY := c.placeY
	for j := 0; j < len(c.points); j += sz {
		for i := 0; i < sz; i += 2 {
			c.points[i+j] += lastX
			c.points[i+1+j] += lastY
		}
		lastX = c.points[(j+sz)-2]
		lastY = c.points[(j+sz)-1]
	}
}

func (c *pathScanner) hasSetsOrMore(sz int, rel bool) bool {
	if !(len(c.points) >= sz && len(c.points)%sz == 0) {
		return false
	}
	if rel {
		c.pointsToAbs(sz)
	}
	return true
}

// addSeg decodes one command group into path segments.
func (c *pathScanner) addSeg(seg string) error {
	var err error
	c.points, err = numberList(seg[1:], c.points)
	if err != nil {
		return err
	}
	l := len(c.points)
	k := seg[0]
	rel := false
	switch k {
	case 'z', 'Z':
		if len(c.points) != 0 {
			return errParamMismatch
		}
		if c.inPath {
			c.path.Stop(true)
			c.inPath = false
		}
	case 'm':
		c.placeX = 0
		c.placeY = 0
		rel = true
		fallthrough
	case 'M':
		if !c.hasSetsOrMore(2, rel) {
			return errParamMismatch
		}
		c.pathStartX, c.pathStartY = fixed.Int26_6(c.points[0]*64), fixed.Int26_6(c.points[1]*64)
		c.inPath = true
		c.path.Start(fixed.Point26_6{X: c.pathStartX, Y: c.pathStartY})
		for i := 2; i < l-1; i += 2 {
			c.path.Line(fixedPt(c.points[i], c.points[i+1]))
		}
		c.placeX = c.points[l-2]
		c.placeY = c.points[l-1]
	case 'l':
		rel = true
		fallthrough
	case 'L':
		if !c.hasSetsOrMore(2, rel) {
			return errParamMismatch
		}
		for i := 0; i < l-1; i += 2 {
			c.path.Line(fixedPt(c.points[i], c.points[i+1]))
		}
		c.placeX = c.points[l-2]
		c.placeY = c.points[l-1]
	case 'v':
		c.valsToAbs(c.placeY)
		fallthrough
	case 'V':
		if !c.hasSetsOrMore(1, false) {
			return errParamMismatch
		}
		for _, p := range c.points {
			c.path.Line(fixedPt(c.placeX, p))
		}
		c.placeY = c.points[l-1]
	case 'h':
		c.valsToAbs(c.placeX)
		fallthrough
	case 'H':
		if !c.hasSetsOrMore(1, false) {
			return errParamMismatch
		}
		for _, p := range c.points {
			c.path.Line(fixedPt(p, c.placeY))
		}
		c.placeX = c.points[l-1]
	case 'q':
		rel = true
		fallthrough
	case 'Q':
		if !c.hasSetsOrMore(4, rel) {
			return errParamMismatch
		}
		for i := 0; i < l-3; i += 4 {
			c.path.QuadBezier(
				fixedPt(c.points[i], c.points[i+1]),
				fixedPt(c.points[i+2], c.points[i+3]))
		}
		c.cntlPtX, c.cntlPtY = c.points[l-4], c.points[l-3]
		c.placeX = c.points[l-2]
		c.placeY = c.points[l-1]
	case 't':
		rel = true
		fallthrough
	case 'T':
		if !c.hasSetsOrMore(2, rel) {
			return errParamMismatch
		}
		for i := 0; i < l-1; i += 2 {
			switch c.lastKey {
			case 'q', 'Q', 'T', 't':
				c.cntlPtX, c.cntlPtY = reflectPt(c.placeX, c.placeY, c.cntlPtX, c.cntlPtY)
			default:
				c.cntlPtX, c.cntlPtY = c.placeX, c.placeY
			}
			c.path.QuadBezier(
				fixedPt(c.cntlPtX, c.cntlPtY),
				fixedPt(c.points[i], c.points[i+1]))
			c.lastKey = k
			c.placeX = c.points[i]
			c.placeY = c.points[i+1]
		}
	case 'c':
		rel = true
		fallthrough
	case 'C':
		if !c.hasSetsOrMore(6, rel) {
			return errParamMismatch
		}
		for i := 0; i < l-5; i += 6 {
			c.path.CubeBezier(
				fixedPt(c.points[i], c.points[i+1]),
				fixedPt(c.points[i+2], c.points[i+3]),
				fixedPt(c.points[i+4], c.points[i+5]))
		}
		c.cntlPtX, c.cntlPtY = c.points[l-4], c.points[l-3]
		c.placeX = c.points[l-2]
		c.placeY = c.points[l-1]
	case 's':
		rel = true
		fallthrough
	case 'S':
		if !c.hasSetsOrMore(4, rel) {
			return errParamMismatch
		}
		for i := 0; i < l-3; i += 4 {
			switch c.lastKey {
			case 'c', 'C', 's', 'S':
				c.cntlPtX, c.cntlPtY = reflectPt(c.placeX, c.placeY, c.cntlPtX, c.cntlPtY)
			default:
				c.cntlPtX, c.cntlPtY = c.placeX, c.placeY
			}
			c.path.CubeBezier(
				fixedPt(c.cntlPtX, c.cntlPtY),
				fixedPt(c.points[i], c.points[i+1]),
				fixedPt(c.points[i+2], c.points[i+3]))
			c.lastKey = k
			c.cntlPtX, c.cntlPtY = c.points[i], c.points[i+1]
			c.placeX = c.points[i+2]
			c.placeY = c.points[i+3]
		}
	case 'a', 'A':
		if !c.hasSetsOrMore(7, false) {
			return errParamMismatch
		}
		for i := 0; i < l-6; i += 7 {
			if k == 'a' {
				c.points[i+5] += c.placeX
				c.points[i+6] += c.placeY
			}
			c.addArcFromA(c.points[i:])
		}
	default:
		return errCommandUnknown
	}
	// Remember the command so smooth continuations know what to extend.
	c.lastKey = k
	return nil
}

// ellipseAt adds a full ellipse as a closed subpath.
func (c *pathScanner) ellipseAt(cx, cy, rx, ry float64) {
	c.placeX, c.placeY = cx+rx, cy
	c.points = c.points[:0]
	c.points = append(c.points, rx, ry, 0.0, 1.0, 0.0, c.placeX, c.placeY)
	c.path.Start(fixedPt(c.placeX, c.placeY))
	c.addArcFromAC(c.points, cx, cy)
	c.path.Stop(true)
}

func (c *pathScanner) addArcFromA(points []float64) {
	cx, cy := findEllipseCenter(&points[0], &points[1], points[2]*math.Pi/180, c.placeX,
		c.placeY, points[5], points[6], points[4] == 0, points[3] == 0)
	c.addArcFromAC(points, cx, cy)
}

func (c *pathScanner) addArcFromAC(points []float64, cx, cy float64) {
	rotX := points[2] * math.Pi / 180
	largeArc := points[3] != 0
	sweep := points[4] != 0
	startAngle := math.Atan2(c.placeY-cy, c.placeX-cx) - rotX
	endAngle := math.Atan2(points[6]-cy, points[5]-cx) - rotX
	deltaTheta := endAngle - startAngle
	arcBig := math.Abs(deltaTheta) > math.Pi

	etaStart := math.Atan2(math.Sin(startAngle)/points[1], math.Cos(startAngle)/points[0])
	etaEnd := math.Atan2(math.Sin(endAngle)/points[1], math.Cos(endAngle)/points[0])
	deltaEta := etaEnd - etaStart
	if arcBig != largeArc {
		if deltaEta < 0 {
			deltaEta += math.Pi * 2
		} else {
			deltaEta -= math.Pi * 2
		}
	}
	// Needed when the ellipse center lands on the midpoint of the
	// start and end lines.
	if deltaEta < 0 && sweep {
		deltaEta += math.Pi * 2
	} else if deltaEta >= 0 && !sweep {
		deltaEta -= math.Pi * 2
	}

	segs := int(math.Abs(deltaEta)/maxArcDx) + 1
	dEta := deltaEta / float64(segs)
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3
	lx, ly := c.placeX, c.placeY
	sinTheta, cosTheta := math.Sin(rotX), math.Cos(rotX)
	ldx, ldy := ellipsePrime(points[0], points[1], sinTheta, cosTheta, etaStart)
	for i := 1; i <= segs; i++ {
		eta := etaStart + dEta*float64(i)
		var px, py float64
		if i == segs {
			px, py = points[5], points[6] // exact end point, no roundoff
		} else {
			px, py = ellipsePointAt(points[0], points[1], sinTheta, cosTheta, eta, cx, cy)
		}
		dx, dy := ellipsePrime(points[0], points[1], sinTheta, cosTheta, eta)

		c.path.CubeBezier(
			fixedPt(lx+alpha*ldx, ly+alpha*ldy),
			fixedPt(px-alpha*dx, py-alpha*dy),
			fixedPt(px, py))
		lx, ly, ldx, ldy = px, py, dx, dy
	}
	c.placeX, c.placeY = lx, ly
}

// ellipsePrime gives tangent vectors for the parameterized ellipse.
func ellipsePrime(a, b, sinTheta, cosTheta, eta float64) (px, py float64) {
	bCosEta := b * math.Cos(eta)
	aSinEta := a * math.Sin(eta)
	px = -aSinEta*cosTheta - bCosEta*sinTheta
	py = -aSinEta*sinTheta + bCosEta*cosTheta
	return
}

// ellipsePointAt gives points for the parameterized ellipse.
func ellipsePointAt(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	aCosEta := a * math.Cos(eta)
	bSinEta := b * math.Sin(eta)
	px = cx + aCosEta*cosTheta - bSinEta*sinTheta
	py = cy + aCosEta*sinTheta + bSinEta*cosTheta
	return
}

// findEllipseCenter locates the center of the ellipse if it exists; if
// it does not, the radii are increased minimally for a solution to be
// possible while preserving the ra:rb ratio. The problem reduces, via
// coordinate transforms, to finding the center of a circle through the
// origin and an arbitrary point.
func findEllipseCenter(ra, rb *float64, rotX, startX, startY, endX, endY float64, sweep, smallArc bool) (cx, cy float64) {
	cos, sin := math.Cos(rotX), math.Sin(rotX)

	// Move the origin to the start point.
	nx, ny := endX-startX, endY-startY

	// Rotate the ellipse x-axis onto the coordinate x-axis.
	nx, ny = nx*cos+ny*sin, -nx*sin+ny*cos
	// Scale X so that ra == rb; foci and center now coincide.
	nx *= *rb / *ra

	midX, midY := nx/2, ny/2
	midlenSq := midX*midX + midY*midY

	var hr float64
	if *rb**rb < midlenSq {
		// Span is longer than the max width of the ellipse; scale the
		// radii to fit.
		nrb := math.Sqrt(midlenSq)
		if *ra == *rb {
			*ra = nrb // prevents roundoff
		} else {
			*ra = *ra * nrb / *rb
		}
		*rb = nrb
	} else {
		hr = math.Sqrt(*rb**rb-midlenSq) / math.Sqrt(midlenSq)
	}
	// If hr is zero both answers coincide.
	if (sweep && smallArc) || (!sweep && !smallArc) {
		cx = midX + midY*hr
		cy = midY - midX*hr
	} else {
		cx = midX - midY*hr
		cy = midY + midX*hr
	}

	cx *= *ra / *rb
	// Reverse rotate and translate back to the original coordinates.
	return cx*cos - cy*sin + startX, cx*sin + cy*cos + startY
}

// compilePath translates path data into a rasterx path. The result is
// detached from the scanner so it can be stored on a node.
func (c *pathScanner) compilePath(d string) (rasterx.Path, error) {
	c.init()
	lastIndex := -1
	for i, v := range d {
		if unicode.IsLetter(v) && v != 'e' {
			if lastIndex != -1 {
				if err := c.addSeg(d[lastIndex:i]); err != nil {
					return nil, err
				}
			}
			lastIndex = i
		}
	}
	if lastIndex != -1 {
		if err := c.addSeg(d[lastIndex:]); err != nil {
			return nil, err
		}
	}
	out := make(rasterx.Path, len(c.path))
	copy(out, c.path)
	return out, nil
}

// compilePolyPath builds a path from a flat point list, closing it for
// polygons.
func compilePolyPath(points []float64, closed bool) rasterx.Path {
	if len(points) < 4 || len(points)%2 != 0 {
		return nil
	}
	var path rasterx.Path
	path.Start(fixedPt(points[0], points[1]))
	for i := 2; i < len(points)-1; i += 2 {
		path.Line(fixedPt(points[i], points[i+1]))
	}
	if closed {
		path.Stop(true)
	}
	return path
}
