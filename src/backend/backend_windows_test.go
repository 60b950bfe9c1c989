//go:build windows

package backend

import (
	"testing"

	"github.com/lxn/win"

	"crosshair-overlay/src/draw"
)

func TestColorRefNeverProducesColorKey(t *testing.T) {
	// 0.999 scales to exactly 254 per channel, colliding with the key.
	c := draw.Color{R: 0.999, G: 0, B: 0.999, A: 1}
	if ref := colorRef(c); ref == colorKey {
		t.Errorf("colorRef produced the transparency key 0x%06X", ref)
	}
}

func TestCreateSolidBrush(t *testing.T) {
	brush := createSolidBrush(colorRef(draw.Color{R: 1, A: 1}))
	if brush == 0 {
		t.Fatal("Expected a brush handle")
	}
	win.DeleteObject(win.HGDIOBJ(brush))
}

func TestCreateSolidPenMinimumWidth(t *testing.T) {
	pen := createSolidPen(0, draw.Color{R: 1, A: 1})
	if pen == 0 {
		t.Fatal("Expected a pen handle")
	}
	win.DeleteObject(win.HGDIOBJ(pen))
}
