// Package settingsui is the live settings panel. Every widget change is
// pushed through the propagation pipeline immediately, so the overlay
// reflects edits while the user is still dragging a slider.
package settingsui

import (
	"image/color"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"crosshair-overlay/src/favorites"
	"crosshair-overlay/src/settings"
)

// Panel owns the Fyne app and the settings window. The window is built
// once and hidden on close, so reopening it from the tray is instant.
type Panel struct {
	app    fyne.App
	window fyne.Window

	mu      sync.Mutex
	current settings.Settings
	apply   func(settings.Settings)
	favs    *favorites.Store

	// rebuilding suppresses widget callbacks while a favorite snapshot
	// is being written into the controls.
	rebuilding bool

	resyncFns []func(s *settings.Settings)
	favSelect *widget.Select
}

// New creates the panel. apply receives every edited snapshot; it is
// the pipeline's Apply in production.
func New(initial settings.Settings, apply func(settings.Settings), favs *favorites.Store) *Panel {
	p := &Panel{
		app:     app.New(),
		current: initial.Clone(),
		apply:   apply,
		favs:    favs,
	}
	p.window = p.app.NewWindow("Crosshair Settings")
	p.window.Resize(fyne.NewSize(420, 640))
	p.window.SetCloseIntercept(func() { p.window.Hide() })
	p.window.SetContent(p.buildContent())
	return p
}

// Run enters the Fyne main loop. Blocks; call from the main goroutine.
func (p *Panel) Run() {
	p.app.Run()
}

// Quit stops the Fyne main loop.
func (p *Panel) Quit() {
	fyne.Do(func() { p.app.Quit() })
}

// Show raises the settings window. Safe from any goroutine.
func (p *Panel) Show() {
	fyne.Do(func() {
		p.window.Show()
		p.window.RequestFocus()
	})
}

// ApplySnapshot writes a settings snapshot into the controls and pushes
// it through the pipeline. Used when a favorite is loaded.
func (p *Panel) ApplySnapshot(s settings.Settings) {
	snap := s.Clone()
	fyne.Do(func() {
		p.mu.Lock()
		p.current = snap
		p.rebuilding = true
		for _, fn := range p.resyncFns {
			fn(&p.current)
		}
		p.rebuilding = false
		p.mu.Unlock()
	})
	p.apply(snap)
}

// RefreshFavorites reloads the favorites dropdown.
func (p *Panel) RefreshFavorites() {
	fyne.Do(func() {
		if p.favSelect == nil {
			return
		}
		selected := p.favSelect.Selected
		p.favSelect.Options = p.favs.Names()
		p.favSelect.Refresh()
		p.favSelect.SetSelected(selected)
	})
}

// changed records an edit and pushes the new snapshot. Runs on the Fyne
// goroutine from widget callbacks.
func (p *Panel) changed(mutate func(s *settings.Settings)) {
	p.mu.Lock()
	if p.rebuilding {
		p.mu.Unlock()
		return
	}
	mutate(&p.current)
	p.current.Clamp()
	snap := p.current.Clone()
	p.mu.Unlock()
	p.apply(snap)
}

func (p *Panel) buildContent() fyne.CanvasObject {
	crosshair := widget.NewCard("Crosshair Line", "", p.buildCrosshairSection())
	dot := widget.NewCard("Center Dot", "", p.buildDotSection())
	ticks := widget.NewCard("Tick Marks", "", p.buildTickSection())
	labels := widget.NewCard("Tick Labels", "", p.buildTickLabelSection())
	favs := widget.NewCard("Favorites", "", p.buildFavoritesSection())

	return container.NewVScroll(container.NewVBox(crosshair, dot, ticks, labels, favs))
}

func (p *Panel) buildCrosshairSection() fyne.CanvasObject {
	colorRow := p.colorRow("Color",
		func(s *settings.Settings) *[3]float64 { return &s.LineColor })
	width := p.sliderRow("Width", 0.5, 10, 0.5,
		func(s *settings.Settings) *float64 { return &s.LineWidth })
	opacity := p.sliderRow("Opacity", 0, 1, 0.05,
		func(s *settings.Settings) *float64 { return &s.LineOpacity })
	fullscreen := p.checkRow("Full screen lines",
		func(s *settings.Settings) *bool { return &s.CrosshairFullscreen })
	radius := p.sliderRow("Radius", 20, 1000, 10,
		func(s *settings.Settings) *float64 { return &s.CrosshairRadius })

	return container.NewVBox(colorRow, width, opacity, fullscreen, radius)
}

func (p *Panel) buildDotSection() fyne.CanvasObject {
	enabled := p.checkRow("Show center dot",
		func(s *settings.Settings) *bool { return &s.DotEnabled })
	radius := p.sliderRow("Radius", 1, 20, 1,
		func(s *settings.Settings) *float64 { return &s.DotRadius })
	fill := p.colorRow("Fill color",
		func(s *settings.Settings) *[3]float64 { return &s.DotFillColor })
	fillOpacity := p.sliderRow("Fill opacity", 0, 1, 0.05,
		func(s *settings.Settings) *float64 { return &s.DotFillOpacity })
	stroke := p.colorRow("Stroke color",
		func(s *settings.Settings) *[3]float64 { return &s.DotStrokeColor })
	strokeOpacity := p.sliderRow("Stroke opacity", 0, 1, 0.05,
		func(s *settings.Settings) *float64 { return &s.DotStrokeOpacity })
	strokeWidth := p.sliderRow("Stroke width", 0, 5, 0.5,
		func(s *settings.Settings) *float64 { return &s.DotStrokeWidth })

	return container.NewVBox(enabled, radius, fill, fillOpacity, stroke, strokeOpacity, strokeWidth)
}

func (p *Panel) buildTickSection() fyne.CanvasObject {
	enabled := p.checkRow("Show tick marks",
		func(s *settings.Settings) *bool { return &s.TickEnabled })
	spacing := p.sliderRow("Spacing", 5, 200, 5,
		func(s *settings.Settings) *float64 { return &s.TickSpacing })
	// TickMajorEvery is integral, so it gets its own slider instead of
	// the float64 helper.
	majorEverySlider := widget.NewSlider(0, 10)
	majorEverySlider.Step = 1
	majorEverySlider.SetValue(float64(p.current.TickMajorEvery))
	majorEverySlider.OnChanged = func(v float64) {
		p.changed(func(s *settings.Settings) { s.TickMajorEvery = int(v) })
	}
	p.resyncFns = append(p.resyncFns, func(s *settings.Settings) {
		majorEverySlider.SetValue(float64(s.TickMajorEvery))
	})
	majorRow := container.NewBorder(nil, nil, widget.NewLabel("Major every Nth"), nil, majorEverySlider)

	minorLen := p.sliderRow("Minor length", 1, 20, 1,
		func(s *settings.Settings) *float64 { return &s.TickMinorLength })
	majorLen := p.sliderRow("Major length", 1, 30, 1,
		func(s *settings.Settings) *float64 { return &s.TickMajorLength })
	tickColor := p.colorRow("Color",
		func(s *settings.Settings) *[3]float64 { return &s.TickColor })
	opacity := p.sliderRow("Opacity", 0, 1, 0.05,
		func(s *settings.Settings) *float64 { return &s.TickOpacity })

	return container.NewVBox(enabled, spacing, majorRow, minorLen, majorLen, tickColor, opacity)
}

func (p *Panel) buildTickLabelSection() fyne.CanvasObject {
	enabled := p.checkRow("Show distance labels",
		func(s *settings.Settings) *bool { return &s.TickLabels })
	size := p.sliderRow("Size", 6, 24, 1,
		func(s *settings.Settings) *float64 { return &s.TickLabelSize })
	labelColor := p.colorRow("Color",
		func(s *settings.Settings) *[3]float64 { return &s.TickLabelColor })
	opacity := p.sliderRow("Opacity", 0, 1, 0.05,
		func(s *settings.Settings) *float64 { return &s.TickLabelOpacity })

	return container.NewVBox(enabled, size, labelColor, opacity)
}

func (p *Panel) buildFavoritesSection() fyne.CanvasObject {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Preset name")

	p.favSelect = widget.NewSelect(p.favs.Names(), nil)
	p.favSelect.PlaceHolder = "(select a preset)"

	saveBtn := widget.NewButton("Save", func() {
		name := nameEntry.Text
		if name == "" {
			dialog.ShowInformation("No Name", "Enter a name for the preset first.", p.window)
			return
		}
		p.mu.Lock()
		snap := p.current.Clone()
		p.mu.Unlock()
		p.favs.Save(name, snap)
		nameEntry.SetText("")
	})

	loadBtn := widget.NewButton("Load", func() {
		name := p.favSelect.Selected
		if name == "" {
			return
		}
		snap, ok := p.favs.Get(name)
		if !ok {
			log.Printf("settingsui: favorite %q disappeared", name)
			return
		}
		p.ApplySnapshot(snap)
	})

	deleteBtn := widget.NewButton("Delete", func() {
		name := p.favSelect.Selected
		if name == "" {
			return
		}
		dialog.ShowConfirm("Delete Preset", "Delete \""+name+"\"?", func(ok bool) {
			if ok {
				p.favs.Delete(name)
				p.favSelect.ClearSelected()
			}
		}, p.window)
	})

	saveRow := container.NewBorder(nil, nil, nil, saveBtn, nameEntry)
	actionRow := container.NewHBox(loadBtn, deleteBtn)
	return container.NewVBox(saveRow, p.favSelect, actionRow)
}

// sliderRow builds a labeled slider bound to one settings field.
func (p *Panel) sliderRow(label string, min, max, step float64, field func(s *settings.Settings) *float64) fyne.CanvasObject {
	slider := widget.NewSlider(min, max)
	slider.Step = step
	if f := field(&p.current); f != nil {
		slider.SetValue(*f)
	}
	slider.OnChanged = func(v float64) {
		p.changed(func(s *settings.Settings) {
			if f := field(s); f != nil {
				*f = v
			}
		})
	}
	p.resyncFns = append(p.resyncFns, func(s *settings.Settings) {
		if f := field(s); f != nil {
			slider.SetValue(*f)
		}
	})
	return container.NewBorder(nil, nil, widget.NewLabel(label), nil, slider)
}

func (p *Panel) checkRow(label string, field func(s *settings.Settings) *bool) fyne.CanvasObject {
	check := widget.NewCheck(label, nil)
	check.SetChecked(*field(&p.current))
	check.OnChanged = func(v bool) {
		p.changed(func(s *settings.Settings) { *field(s) = v })
	}
	p.resyncFns = append(p.resyncFns, func(s *settings.Settings) {
		check.SetChecked(*field(s))
	})
	return check
}

// colorRow builds a swatch button that opens the color picker.
func (p *Panel) colorRow(label string, field func(s *settings.Settings) *[3]float64) fyne.CanvasObject {
	swatch := canvas.NewRectangle(toColor(*field(&p.current)))
	swatch.SetMinSize(fyne.NewSize(24, 24))

	btn := widget.NewButton("Pick...", func() {
		picker := dialog.NewColorPicker(label, "", func(c color.Color) {
			rgb := fromColor(c)
			swatch.FillColor = toColor(rgb)
			swatch.Refresh()
			p.changed(func(s *settings.Settings) { *field(s) = rgb })
		}, p.window)
		picker.Advanced = true
		picker.Show()
	})

	p.resyncFns = append(p.resyncFns, func(s *settings.Settings) {
		swatch.FillColor = toColor(*field(s))
		swatch.Refresh()
	})
	return container.NewBorder(nil, nil, widget.NewLabel(label), btn, swatch)
}

func toColor(rgb [3]float64) color.Color {
	clamp := func(v float64) uint8 {
		n := int(v*255 + 0.5)
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		return uint8(n)
	}
	return color.NRGBA{R: clamp(rgb[0]), G: clamp(rgb[1]), B: clamp(rgb[2]), A: 255}
}

func fromColor(c color.Color) [3]float64 {
	r, g, b, _ := c.RGBA()
	return [3]float64{float64(r) / 65535, float64(g) / 65535, float64(b) / 65535}
}
