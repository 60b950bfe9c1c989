// Package settings defines the flat appearance-settings record shared by
// the overlay renderer, the settings panel, and the persistence layer.
// JSON field names are the config-file keys; unknown keys found in a
// persisted file survive a load/save round trip.
package settings

import "encoding/json"

// Settings is the full set of live-tunable appearance parameters.
// Colors are RGB triples in [0,1]; opacities are in [0,1].
type Settings struct {
	LineColor           [3]float64 `json:"line_color"`
	LineWidth           float64    `json:"line_width"`
	LineOpacity         float64    `json:"line_opacity"`
	CrosshairFullscreen bool       `json:"crosshair_fullscreen"`
	CrosshairRadius     float64    `json:"crosshair_radius"`

	DotEnabled       bool       `json:"dot_enabled"`
	DotRadius        float64    `json:"dot_radius"`
	DotFillColor     [3]float64 `json:"dot_fill_color"`
	DotFillOpacity   float64    `json:"dot_fill_opacity"`
	DotStrokeColor   [3]float64 `json:"dot_stroke_color"`
	DotStrokeOpacity float64    `json:"dot_stroke_opacity"`
	DotStrokeWidth   float64    `json:"dot_stroke_width"`

	TickEnabled     bool       `json:"tick_enabled"`
	TickColor       [3]float64 `json:"tick_color"`
	TickOpacity     float64    `json:"tick_opacity"`
	TickSpacing     float64    `json:"tick_spacing"`
	TickMajorEvery  int        `json:"tick_major_every"`
	TickMinorLength float64    `json:"tick_minor_length"`
	TickMajorLength float64    `json:"tick_major_length"`

	TickLabels       bool       `json:"tick_labels"`
	TickLabelColor   [3]float64 `json:"tick_label_color"`
	TickLabelOpacity float64    `json:"tick_label_opacity"`
	TickLabelSize    float64    `json:"tick_label_size"`

	// Extra holds keys from the persisted file this build doesn't know
	// about. They are written back verbatim on save.
	Extra map[string]json.RawMessage `json:"-"`
}

// Defaults returns the built-in settings, matching a fresh install.
func Defaults() Settings {
	return Settings{
		LineColor:           [3]float64{0.9, 0.9, 0.9},
		LineWidth:           1.0,
		LineOpacity:         0.35,
		CrosshairFullscreen: true,
		CrosshairRadius:     100,
		DotEnabled:          true,
		DotRadius:           3,
		DotFillColor:        [3]float64{1.0, 0.3, 0.3},
		DotFillOpacity:      0.6,
		DotStrokeColor:      [3]float64{1.0, 1.0, 1.0},
		DotStrokeOpacity:    0.0,
		DotStrokeWidth:      1.0,
		TickEnabled:         false,
		TickColor:           [3]float64{0.9, 0.9, 0.9},
		TickOpacity:         0.3,
		TickSpacing:         10,
		TickMajorEvery:      5,
		TickMinorLength:     3.0,
		TickMajorLength:     6.0,
		TickLabels:          false,
		TickLabelColor:      [3]float64{0.9, 0.9, 0.9},
		TickLabelOpacity:    0.5,
		TickLabelSize:       9.0,
	}
}

// knownKeys lists every JSON key the struct owns, for separating unknown
// keys during a tolerant load.
var knownKeys = []string{
	"line_color", "line_width", "line_opacity",
	"crosshair_fullscreen", "crosshair_radius",
	"dot_enabled", "dot_radius",
	"dot_fill_color", "dot_fill_opacity",
	"dot_stroke_color", "dot_stroke_opacity", "dot_stroke_width",
	"tick_enabled", "tick_color", "tick_opacity",
	"tick_spacing", "tick_major_every",
	"tick_minor_length", "tick_major_length",
	"tick_labels", "tick_label_color", "tick_label_opacity",
	"tick_label_size",
}

// UnmarshalJSON merges the document over the receiver's current values:
// present keys overwrite, missing keys keep what was there (callers start
// from Defaults()), unknown keys land in Extra.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type alias Settings
	a := alias(*s)
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range knownKeys {
		delete(raw, k)
	}
	*s = Settings(a)
	if len(raw) > 0 {
		s.Extra = raw
	} else {
		s.Extra = nil
	}
	return nil
}

// MarshalJSON writes the known fields plus any preserved unknown keys.
func (s Settings) MarshalJSON() ([]byte, error) {
	type alias Settings
	b, err := json.Marshal(alias(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return b, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// Clone returns a deep copy, including preserved unknown keys. Favorites
// snapshots must not alias the live record.
func (s Settings) Clone() Settings {
	c := s
	if s.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// Clamp forces every field into its valid range. The settings UI clamps
// at the widget level already; this is the normalization applied to
// values coming from disk before they can reach the renderer.
func (s *Settings) Clamp() {
	clampRGB(&s.LineColor)
	clampRGB(&s.DotFillColor)
	clampRGB(&s.DotStrokeColor)
	clampRGB(&s.TickColor)
	clampRGB(&s.TickLabelColor)
	s.LineOpacity = clamp01(s.LineOpacity)
	s.DotFillOpacity = clamp01(s.DotFillOpacity)
	s.DotStrokeOpacity = clamp01(s.DotStrokeOpacity)
	s.TickOpacity = clamp01(s.TickOpacity)
	s.TickLabelOpacity = clamp01(s.TickLabelOpacity)
	s.LineWidth = nonNeg(s.LineWidth)
	s.DotRadius = nonNeg(s.DotRadius)
	s.DotStrokeWidth = nonNeg(s.DotStrokeWidth)
	s.CrosshairRadius = nonNeg(s.CrosshairRadius)
	s.TickMinorLength = nonNeg(s.TickMinorLength)
	s.TickMajorLength = nonNeg(s.TickMajorLength)
	if s.TickMajorEvery < 0 {
		s.TickMajorEvery = 0
	}
	if s.TickLabelSize < 1 {
		s.TickLabelSize = 1
	}
}

func clampRGB(c *[3]float64) {
	for i := range c {
		c[i] = clamp01(c[i])
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
