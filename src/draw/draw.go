// Package draw defines the command vocabulary the renderer emits and a
// backend consumes once per frame. Commands carry plain geometry and RGBA
// float colors so backends stay free of overlay semantics.
package draw

// Color is an RGBA color with all channels in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGBA builds a Color from a 3-element RGB slice plus a separate opacity,
// the shape both the config file and the settings record use.
func RGBA(rgb [3]float64, opacity float64) Color {
	return Color{R: rgb[0], G: rgb[1], B: rgb[2], A: opacity}
}

// Command is one drawing primitive. Exactly one of the concrete types
// below is behind it.
type Command interface {
	command()
}

// Line is a stroked line segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Color          Color
}

// FillCircle is a filled circle.
type FillCircle struct {
	X, Y, Radius float64
	Color        Color
}

// StrokeCircle is a circle outline.
type StrokeCircle struct {
	X, Y, Radius float64
	Width        float64
	Color        Color
}

// FillRect is a filled axis-aligned rectangle.
type FillRect struct {
	X, Y, W, H float64
	Color      Color
}

// Text draws a string with its top-left corner at (X, Y).
type Text struct {
	X, Y  float64
	Text  string
	Size  float64
	Bold  bool
	Color Color
}

func (Line) command()         {}
func (FillCircle) command()   {}
func (StrokeCircle) command() {}
func (FillRect) command()     {}
func (Text) command()         {}

// TextMeasurer reports rendered text extents. The renderer needs extents
// for label centering and background sizing; backends implement this
// against their font machinery.
type TextMeasurer interface {
	MeasureText(text string, size float64, bold bool) (w, h float64)
}
