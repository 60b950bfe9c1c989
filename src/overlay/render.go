package overlay

import (
	"fmt"
	"strconv"

	"crosshair-overlay/src/draw"
	"crosshair-overlay/src/geom"
	"crosshair-overlay/src/settings"
)

const (
	// minTickSpacing is a defensive floor: below it tick rendering is
	// skipped regardless of the enabled flag, so a bad persisted value
	// cannot flood the frame with ticks.
	minTickSpacing = 5

	axisTickWidth    = 1.0
	measureLabelSize = 13
	measureLabelPad  = 4
	// measureLabelLift is the gap between the segment midpoint and the
	// distance label baseline.
	measureLabelLift = 12
)

// Render produces the draw commands for the current state. Settings are
// assumed valid (UI-clamped); values are not re-checked here beyond the
// documented defensive floors.
func (m *Machine) Render(cfg *settings.Settings, text draw.TextMeasurer) []draw.Command {
	if !m.state.Active {
		return nil
	}
	switch m.state.Mode {
	case ModeMeasure:
		return m.renderMeasurement(cfg, text)
	default:
		return m.renderCrosshair(cfg, text)
	}
}

func (m *Machine) renderCrosshair(cfg *settings.Settings, text draw.TextMeasurer) []draw.Command {
	px := m.state.Pointer.X
	py := m.state.Pointer.Y

	var hLeft, hRight, vTop, vBottom float64
	if cfg.CrosshairFullscreen {
		hLeft, hRight = m.bounds.X, m.bounds.X+m.bounds.W
		vTop, vBottom = m.bounds.Y, m.bounds.Y+m.bounds.H
	} else {
		r := cfg.CrosshairRadius
		hLeft, hRight = px-r, px+r
		vTop, vBottom = py-r, py+r
	}

	lineColor := draw.RGBA(cfg.LineColor, cfg.LineOpacity)
	cmds := []draw.Command{
		draw.Line{X1: hLeft, Y1: py, X2: hRight, Y2: py, Width: cfg.LineWidth, Color: lineColor},
		draw.Line{X1: px, Y1: vTop, X2: px, Y2: vBottom, Width: cfg.LineWidth, Color: lineColor},
	}

	if cfg.TickEnabled && cfg.TickSpacing >= minTickSpacing {
		cmds = append(cmds, m.axisTickCommands(cfg, text, hLeft, hRight, vTop, vBottom)...)
	}

	if cfg.DotEnabled && cfg.DotRadius > 0 {
		cmds = append(cmds, draw.FillCircle{
			X: px, Y: py, Radius: cfg.DotRadius,
			Color: draw.RGBA(cfg.DotFillColor, cfg.DotFillOpacity),
		})
		if cfg.DotStrokeWidth > 0 && cfg.DotStrokeOpacity > 0 {
			cmds = append(cmds, draw.StrokeCircle{
				X: px, Y: py, Radius: cfg.DotRadius,
				Width: cfg.DotStrokeWidth,
				Color: draw.RGBA(cfg.DotStrokeColor, cfg.DotStrokeOpacity),
			})
		}
	}
	return cmds
}

func (m *Machine) axisTickCommands(cfg *settings.Settings, text draw.TextMeasurer, hLeft, hRight, vTop, vBottom float64) []draw.Command {
	px := m.state.Pointer.X
	py := m.state.Pointer.Y
	tickColor := draw.RGBA(cfg.TickColor, cfg.TickOpacity)
	labelColor := draw.RGBA(cfg.TickLabelColor, cfg.TickLabelOpacity)

	var cmds []draw.Command

	for _, tick := range geom.AxisTicks(px, hLeft, hRight, cfg.TickSpacing, cfg.TickMajorEvery) {
		length := cfg.TickMinorLength
		if tick.Major {
			length = cfg.TickMajorLength
		}
		cmds = append(cmds, draw.Line{
			X1: tick.Pos, Y1: py - length,
			X2: tick.Pos, Y2: py + length,
			Width: axisTickWidth, Color: tickColor,
		})
		if cfg.TickLabels && tick.Major {
			label := strconv.Itoa(int(distance(tick.Pos, px)))
			w, _ := text.MeasureText(label, cfg.TickLabelSize, false)
			anchor := geom.HTickLabelAnchor(tick.Pos, py, cfg.TickMajorLength, w)
			cmds = append(cmds, draw.Text{
				X: anchor.X, Y: anchor.Y,
				Text: label, Size: cfg.TickLabelSize, Color: labelColor,
			})
		}
	}

	for _, tick := range geom.AxisTicks(py, vTop, vBottom, cfg.TickSpacing, cfg.TickMajorEvery) {
		length := cfg.TickMinorLength
		if tick.Major {
			length = cfg.TickMajorLength
		}
		cmds = append(cmds, draw.Line{
			X1: px - length, Y1: tick.Pos,
			X2: px + length, Y2: tick.Pos,
			Width: axisTickWidth, Color: tickColor,
		})
		if cfg.TickLabels && tick.Major {
			label := strconv.Itoa(int(distance(tick.Pos, py)))
			w, h := text.MeasureText(label, cfg.TickLabelSize, false)
			anchor := geom.VTickLabelAnchor(tick.Pos, px, cfg.TickMajorLength, w, h)
			cmds = append(cmds, draw.Text{
				X: anchor.X, Y: anchor.Y,
				Text: label, Size: cfg.TickLabelSize, Color: labelColor,
			})
		}
	}
	return cmds
}

func (m *Machine) renderMeasurement(cfg *settings.Settings, text draw.TextMeasurer) []draw.Command {
	if m.state.Start == nil || m.state.End == nil {
		return nil
	}
	start := *m.state.Start
	end := *m.state.End
	lineColor := draw.RGBA(cfg.LineColor, cfg.LineOpacity)

	cmds := []draw.Command{
		draw.Line{X1: start.X, Y1: start.Y, X2: end.X, Y2: end.Y, Width: cfg.LineWidth, Color: lineColor},
	}

	markerR := cfg.LineWidth * 1.5
	if markerR < 3 {
		markerR = 3
	}
	cmds = append(cmds,
		draw.FillCircle{X: start.X, Y: start.Y, Radius: markerR, Color: lineColor},
		draw.FillCircle{X: end.X, Y: end.Y, Radius: markerR, Color: lineColor},
	)

	unit, perp, length, ok := geom.SegmentFrame(start, end)
	if !ok {
		// Zero-length drag: just the endpoint markers, no ruler.
		return cmds
	}

	if cfg.TickEnabled && cfg.TickSpacing >= minTickSpacing {
		cmds = append(cmds, m.measureTickCommands(cfg, text, start, unit, perp, length)...)
	}

	// Distance label with opaque backing at the midpoint.
	label := m.measureLabel()
	mid := geom.Midpoint(start, end)
	w, h := text.MeasureText(label, measureLabelSize, true)
	cmds = append(cmds,
		draw.FillRect{
			X: mid.X - w/2 - measureLabelPad,
			Y: mid.Y - measureLabelLift - h - measureLabelPad,
			W: w + 2*measureLabelPad,
			H: h + 2*measureLabelPad,
			Color: draw.Color{R: 0, G: 0, B: 0, A: 0.7},
		},
		draw.Text{
			X: mid.X - w/2, Y: mid.Y - measureLabelLift - h,
			Text: label, Size: measureLabelSize, Bold: true,
			Color: draw.Color{R: 1, G: 1, B: 1, A: 0.95},
		},
	)
	return cmds
}

func (m *Machine) measureTickCommands(cfg *settings.Settings, text draw.TextMeasurer, start, unit, perp geom.Point, length float64) []draw.Command {
	tickColor := draw.RGBA(cfg.TickColor, cfg.TickOpacity)
	labelColor := draw.RGBA(cfg.TickLabelColor, cfg.TickLabelOpacity)

	tickWidth := cfg.LineWidth * 0.6
	if tickWidth < 1 {
		tickWidth = 1
	}

	var cmds []draw.Command
	for _, tick := range geom.MeasureTicks(length, cfg.TickSpacing, cfg.TickMajorEvery) {
		at := start.Add(unit.Scale(tick.Pos))
		tickLen := cfg.TickMinorLength
		if tick.Major {
			tickLen = cfg.TickMajorLength
		}
		half := tickLen / 2
		a := at.Add(perp.Scale(-half))
		b := at.Add(perp.Scale(half))
		cmds = append(cmds, draw.Line{
			X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
			Width: tickWidth, Color: tickColor,
		})
		if cfg.TickLabels && tick.Major {
			label := fmt.Sprintf("%d", int(tick.Pos))
			w, h := text.MeasureText(label, cfg.TickLabelSize, false)
			anchor := geom.MeasureTickLabelAnchor(at, perp, half, w, h)
			cmds = append(cmds, draw.Text{
				X: anchor.X, Y: anchor.Y,
				Text: label, Size: cfg.TickLabelSize, Color: labelColor,
			})
		}
	}
	return cmds
}

func distance(pos, center float64) float64 {
	if pos > center {
		return pos - center
	}
	return center - pos
}
