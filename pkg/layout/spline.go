package layout

import (
	"math"
	"strconv"
	"strings"
)

// CatmullRom samples a uniform Catmull-Rom spline through points, returning
// samples points per segment plus the final point. The curve passes through
// every control point. Endpoints are clamped by repeating them.
//
// Fewer than two points are returned unchanged.
func CatmullRom(points []Point, samples int) []Point {
	if len(points) < 2 {
		return append([]Point(nil), points...)
	}
	if samples < 1 {
		samples = 1
	}
	out := make([]Point, 0, (len(points)-1)*samples+1)
	for i := 0; i+1 < len(points); i++ {
		p0, p1, p2, p3 := neighbours(points, i)
		for s := 0; s < samples; s++ {
			t := float64(s) / float64(samples)
			out = append(out, catmullRomAt(p0, p1, p2, p3, t))
		}
	}
	return append(out, points[len(points)-1])
}

func catmullRomAt(p0, p1, p2, p3 Point, t float64) Point {
	t2, t3 := t*t, t*t*t
	f := func(a, b, c, d float64) float64 {
		return 0.5 * (2*b + (-a+c)*t + (2*a-5*b+4*c-d)*t2 + (-a+3*b-3*c+d)*t3)
	}
	return Point{X: f(p0.X, p1.X, p2.X, p3.X), Y: f(p0.Y, p1.Y, p2.Y, p3.Y)}
}

// neighbours returns the four control points of segment i, repeating the
// endpoints at the ends of the curve.
func neighbours(points []Point, i int) (Point, Point, Point, Point) {
	p1, p2 := points[i], points[i+1]
	p0, p3 := p1, p2
	if i > 0 {
		p0 = points[i-1]
	}
	if i+2 < len(points) {
		p3 = points[i+2]
	}
	return p0, p1, p2, p3
}

// SVGPath converts the Catmull-Rom spline through points into SVG path
// data made of cubic Bézier segments ("M x,y C c1 c2 p ..."). Each
// Catmull-Rom segment P1→P2 maps to control points P1+(P2-P0)/6 and
// P2-(P3-P1)/6. Coordinates are rounded to two decimals.
//
// An empty slice yields "", a single point a bare move command.
func SVGPath(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("M")
	writePoint(&b, points[0])
	for i := 0; i+1 < len(points); i++ {
		p0, p1, p2, p3 := neighbours(points, i)
		c1 := Point{X: p1.X + (p2.X-p0.X)/6, Y: p1.Y + (p2.Y-p0.Y)/6}
		c2 := Point{X: p2.X - (p3.X-p1.X)/6, Y: p2.Y - (p3.Y-p1.Y)/6}
		b.WriteString(" C")
		writePoint(&b, c1)
		b.WriteString(" ")
		writePoint(&b, c2)
		b.WriteString(" ")
		writePoint(&b, p2)
	}
	return b.String()
}

func writePoint(b *strings.Builder, p Point) {
	b.WriteString(formatCoord(p.X))
	b.WriteByte(',')
	b.WriteString(formatCoord(p.Y))
}

func formatCoord(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // normalise -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
