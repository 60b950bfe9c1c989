// Package geom provides the pure geometry behind the overlay renderer:
// tick placement along the crosshair axes and along measurement segments,
// endpoint angle snapping, and label anchor computation.
package geom

import "math"

// Point is a position in virtual-screen coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Midpoint returns the midpoint of the segment p→q.
func Midpoint(p, q Point) Point {
	return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2}
}

// Tick is a single tick mark. For AxisTicks, Pos is an absolute
// coordinate along the axis; for MeasureTicks it is the distance from
// the segment start.
type Tick struct {
	Pos   float64
	Major bool
}

// AxisTicks emits ticks outward from center in both directions, clipped
// to [lo, hi]. Indexing starts at 1; a tick is major when majorEvery > 0
// and the index is a multiple of majorEvery. spacing <= 0 emits nothing.
func AxisTicks(center, lo, hi, spacing float64, majorEvery int) []Tick {
	if spacing <= 0 {
		return nil
	}
	var ticks []Tick
	for i := 1; ; i++ {
		dist := float64(i) * spacing
		plus := center + dist
		minus := center - dist
		if plus > hi && minus < lo {
			return ticks
		}
		major := majorEvery > 0 && i%majorEvery == 0
		if plus <= hi {
			ticks = append(ticks, Tick{Pos: plus, Major: major})
		}
		if minus >= lo {
			ticks = append(ticks, Tick{Pos: minus, Major: major})
		}
	}
}

// MeasureTicks emits ticks at multiples of spacing along a segment of the
// given length. Pos is the distance from the segment start, not a screen
// coordinate; the caller projects it onto the segment direction.
func MeasureTicks(length, spacing float64, majorEvery int) []Tick {
	if spacing <= 0 || length < spacing {
		return nil
	}
	steps := int(length / spacing)
	ticks := make([]Tick, 0, steps)
	for i := 1; i <= steps; i++ {
		ticks = append(ticks, Tick{
			Pos:   float64(i) * spacing,
			Major: majorEvery > 0 && i%majorEvery == 0,
		})
	}
	return ticks
}

// SnapAngle snaps the segment origin→p to the nearest multiple of
// stepDegrees, preserving its length. Points closer than one pixel to the
// origin are returned unchanged to avoid angle instability near zero
// length.
func SnapAngle(origin, p Point, stepDegrees float64) Point {
	dx := p.X - origin.X
	dy := p.Y - origin.Y
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		return p
	}
	step := stepDegrees * math.Pi / 180
	angle := math.Round(math.Atan2(dy, dx)/step) * step
	return Point{
		X: origin.X + dist*math.Cos(angle),
		Y: origin.Y + dist*math.Sin(angle),
	}
}

// SegmentFrame returns the unit direction of start→end, its 90°
// counter-clockwise rotation, and the segment length. Degenerate segments
// (length < 1) return ok=false.
func SegmentFrame(start, end Point) (unit, perp Point, length float64, ok bool) {
	dx := end.X - start.X
	dy := end.Y - start.Y
	length = math.Hypot(dx, dy)
	if length < 1 {
		return Point{}, Point{}, length, false
	}
	unit = Point{dx / length, dy / length}
	perp = Point{-unit.Y, unit.X}
	return unit, perp, length, true
}

// labelPad is the fixed gap between a tick mark and its label.
const labelPad = 2

// HTickLabelAnchor returns the top-left anchor of a label for a tick on
// the horizontal crosshair line: centered under the tick, below the major
// tick extent.
func HTickLabelAnchor(tickX, centerY, majorLen, textW float64) Point {
	return Point{X: tickX - textW/2, Y: centerY + majorLen + labelPad}
}

// VTickLabelAnchor returns the top-left anchor of a label for a tick on
// the vertical crosshair line: right-aligned beside the tick, vertically
// centered on it.
func VTickLabelAnchor(tickY, centerX, majorLen, textW, textH float64) Point {
	return Point{X: centerX - majorLen - labelPad - textW, Y: tickY - textH/2}
}

// MeasureTickLabelAnchor returns the top-left anchor of a label for a
// measurement tick, offset along the perpendicular from the tick midpoint
// so the label clears the tick mark.
func MeasureTickLabelAnchor(tick, perp Point, halfTickLen, textW, textH float64) Point {
	off := halfTickLen + labelPad + textH/2
	return Point{
		X: tick.X + perp.X*off - textW/2,
		Y: tick.Y + perp.Y*off - textH/2,
	}
}
