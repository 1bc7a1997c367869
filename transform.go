// Copyright 2024 The svgdom Authors. All rights reserved.
package svgdom

import (
	"math"
	"strings"
)

// parseTransform reads a transform attribute. Productions compose into
// the accumulator in textual order; any malformed production fails the
// entire attribute so no partial transform is ever applied.
func parseTransform(v string) (Matrix2D, error) {
	m1 := Identity
	var points []float64
	for _, t := range strings.Split(v, ")") {
		// Productions may be separated by commas as well as whitespace.
		t = strings.TrimLeft(t, ", \t\r\n")
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return Identity, errParamMismatch // badly formed transformation
		}
		var err error
		points, err = numberList(d[1], points)
		if err != nil {
			return Identity, err
		}
		ln := len(points)
		switch strings.ToLower(strings.TrimSpace(d[0])) {
		case "rotate":
			switch ln {
			case 1:
				m1 = m1.Rotate(points[0] * math.Pi / 180)
			case 3:
				// Rotation about a pivot, composed as one matrix.
				sin, cos := math.Sincos(points[0] * math.Pi / 180)
				px, py := points[1], points[2]
				m1 = m1.Mult(Matrix2D{
					A: cos, B: sin, C: -sin, D: cos,
					E: px - cos*px + sin*py,
					F: py - sin*px - cos*py})
			default:
				return Identity, errParamMismatch
			}
		case "translate":
			switch ln {
			case 1:
				m1 = m1.Mult(Matrix2D{A: 1, D: 1, E: points[0]})
			case 2:
				m1 = m1.Mult(Matrix2D{A: 1, D: 1, E: points[0], F: points[1]})
			default:
				return Identity, errParamMismatch
			}
		case "scale":
			switch ln {
			case 1:
				m1 = m1.Scale(points[0], points[0])
			case 2:
				m1 = m1.Scale(points[0], points[1])
			default:
				return Identity, errParamMismatch
			}
		case "skewx":
			if ln != 1 {
				return Identity, errParamMismatch
			}
			m1 = m1.SkewX(points[0] * math.Pi / 180)
		case "skewy":
			if ln != 1 {
				return Identity, errParamMismatch
			}
			m1 = m1.SkewY(points[0] * math.Pi / 180)
		case "matrix":
			if ln != 6 {
				return Identity, errParamMismatch
			}
			m1 = m1.Mult(Matrix2D{
				points[0], points[1], points[2],
				points[3], points[4], points[5]})
		default:
			return Identity, errParamMismatch
		}
	}
	return m1, nil
}
