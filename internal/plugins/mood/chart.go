package mood

import (
	"fmt"
	"math"
)

// Default pie geometry for the analytics page.
const (
	ChartCenter = 100.0
	ChartRadius = 80.0
	ChartSize   = 220
)

// point converts an angle measured clockwise from 12 o'clock to SVG
// coordinates.
func point(cx, cy, r, angleDeg float64) (float64, float64) {
	rad := (angleDeg - 90) * math.Pi / 180
	return cx + r*math.Cos(rad), cy + r*math.Sin(rad)
}

// ArcPath returns the SVG path data for one pie segment: an arc between
// the segment's angles closed back to the centre. SVG cannot draw an arc
// whose end equals its start, so a full circle is emitted as two halves.
func ArcPath(s Segment, cx, cy, r float64) string {
	span := s.EndAngle - s.StartAngle
	if span <= 0 {
		return ""
	}
	if span >= 360 {
		tx, ty := point(cx, cy, r, 0)
		bx, by := point(cx, cy, r, 180)
		return fmt.Sprintf("M %s %s A %s %s 0 1 1 %s %s A %s %s 0 1 1 %s %s Z",
			num(tx), num(ty), num(r), num(r), num(bx), num(by), num(r), num(r), num(tx), num(ty))
	}

	sx, sy := point(cx, cy, r, s.EndAngle)
	ex, ey := point(cx, cy, r, s.StartAngle)
	largeArc := 0
	if span > 180 {
		largeArc = 1
	}
	return fmt.Sprintf("M %s %s A %s %s 0 %d 0 %s %s L %s %s Z",
		num(sx), num(sy), num(r), num(r), largeArc, num(ex), num(ey), num(cx), num(cy))
}

// num formats a coordinate with enough precision for a 220px chart and no
// "-0".
func num(f float64) string {
	f = math.Round(f*1000) / 1000
	if f == 0 {
		f = 0
	}
	return fmt.Sprintf("%g", f)
}
