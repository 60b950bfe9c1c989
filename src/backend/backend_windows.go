//go:build windows

package backend

import (
	"fmt"
	"log"
	"math"
	"os"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"

	"crosshair-overlay/src/draw"
	"crosshair-overlay/src/geom"
)

// Custom thread messages used to marshal calls onto the window thread.
const (
	wmAppPresent = win.WM_APP + 1 + iota
	wmAppClickThrough
	wmAppCursor
	wmAppFocus
	wmAppCapture
	wmAppRelease
	wmAppClose
)

// colorKey is the transparent background color of the layered window.
// Nothing the overlay draws may use it.
const colorKey win.COLORREF = 0x00FE00FE

// LWA_COLORKEY for SetLayeredWindowAttributes.
const lwaColorKey = 0x1

var (
	user32DLL                      = syscall.NewLazyDLL("user32.dll")
	procAllowSetForegroundWindow   = user32DLL.NewProc("AllowSetForegroundWindow")
	procSetLayeredWindowAttributes = user32DLL.NewProc("SetLayeredWindowAttributes")

	gdi32DLL             = syscall.NewLazyDLL("gdi32.dll")
	procCreatePen        = gdi32DLL.NewProc("CreatePen")
	procCreateSolidBrush = gdi32DLL.NewProc("CreateSolidBrush")
	procEllipse          = gdi32DLL.NewProc("Ellipse")
	procRectangle        = gdi32DLL.NewProc("Rectangle")
)

// Single overlay window per process. The window procedure is a plain
// callback, so instance state lives here.
var active *windowsBackend

type windowsBackend struct {
	bounds Bounds
	hwnd   win.HWND
	events chan Event

	mu      sync.Mutex
	frame   []draw.Command
	dragged bool

	cursorCrosshair bool
	arrowCursor     win.HCURSOR
	crossCursor     win.HCURSOR

	done chan struct{}
}

// New creates the overlay window covering bounds and starts its message
// loop on a dedicated OS thread. The window comes up click-through.
func New(b Bounds) (Backend, error) {
	w := &windowsBackend{
		bounds: b,
		events: make(chan Event, 128),
		done:   make(chan struct{}),
	}
	ready := make(chan error, 1)
	go w.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return w, nil
}

func (w *windowsBackend) run(ready chan<- error) {
	// The window and its message loop are bound to this thread. The
	// window procedure resolves the instance through the package-level
	// pointer, so it is set before the first message can arrive.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	active = w

	w.arrowCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW))
	w.crossCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))

	classNameStr := fmt.Sprintf("CrosshairOverlay_%d", time.Now().UnixNano())
	className := syscall.StringToUTF16Ptr(classNameStr)
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       w.arrowCursor,
		HbrBackground: 0,
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wndClass) == 0 {
		ready <- fmt.Errorf("failed to register overlay window class")
		return
	}
	defer win.UnregisterClass(className)

	w.hwnd = win.CreateWindowEx(
		win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW|win.WS_EX_LAYERED|win.WS_EX_TRANSPARENT,
		className,
		syscall.StringToUTF16Ptr("Crosshair Overlay"),
		win.WS_POPUP|win.WS_VISIBLE,
		int32(w.bounds.X), int32(w.bounds.Y), int32(w.bounds.W), int32(w.bounds.H),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if w.hwnd == 0 {
		ready <- fmt.Errorf("failed to create overlay window")
		return
	}
	procSetLayeredWindowAttributes.Call(uintptr(w.hwnd), uintptr(colorKey), 0, lwaColorKey)
	win.ShowWindow(w.hwnd, win.SW_SHOWNOACTIVATE)
	win.UpdateWindow(w.hwnd)
	log.Printf("backend: overlay window up, bounds x=%v y=%v w=%v h=%v",
		w.bounds.X, w.bounds.Y, w.bounds.W, w.bounds.H)
	ready <- nil

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 {
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
	close(w.events)
	close(w.done)
}

func (w *windowsBackend) Bounds() Bounds { return w.bounds }

func (w *windowsBackend) Present(frame []draw.Command) {
	w.mu.Lock()
	w.frame = frame
	w.mu.Unlock()
	win.PostMessage(w.hwnd, wmAppPresent, 0, 0)
}

func (w *windowsBackend) SetClickThrough(enabled bool) {
	var flag uintptr
	if enabled {
		flag = 1
	}
	win.PostMessage(w.hwnd, wmAppClickThrough, flag, 0)
}

func (w *windowsBackend) SetCursor(c Cursor) {
	var flag uintptr
	if c == CursorCrosshair {
		flag = 1
	}
	win.PostMessage(w.hwnd, wmAppCursor, flag, 0)
}

func (w *windowsBackend) RequestFocus() {
	win.PostMessage(w.hwnd, wmAppFocus, 0, 0)
}

func (w *windowsBackend) CapturePointer() {
	win.PostMessage(w.hwnd, wmAppCapture, 0, 0)
}

func (w *windowsBackend) ReleasePointer() {
	win.PostMessage(w.hwnd, wmAppRelease, 0, 0)
}

func (w *windowsBackend) Events() <-chan Event { return w.events }

func (w *windowsBackend) Close() {
	win.PostMessage(w.hwnd, wmAppClose, 0, 0)
	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		log.Printf("backend: timed out waiting for window teardown")
	}
}

// MeasureText measures a label with the same fonts the painter uses.
func (w *windowsBackend) MeasureText(text string, size float64, bold bool) (float64, float64) {
	hdc := win.GetDC(0)
	if hdc == 0 {
		return float64(len(text)) * size * 0.6, size
	}
	defer win.ReleaseDC(0, hdc)

	font := createOverlayFont(size, bold)
	if font == 0 {
		return float64(len(text)) * size * 0.6, size
	}
	defer win.DeleteObject(win.HGDIOBJ(font))
	old := win.SelectObject(hdc, win.HGDIOBJ(font))
	defer win.SelectObject(hdc, old)

	utf16, err := syscall.UTF16FromString(text)
	if err != nil {
		return float64(len(text)) * size * 0.6, size
	}
	var extent win.SIZE
	if !win.GetTextExtentPoint32(hdc, &utf16[0], int32(len(utf16)-1), &extent) {
		return float64(len(text)) * size * 0.6, size
	}
	return float64(extent.CX), float64(extent.CY)
}

func (w *windowsBackend) postEvent(ev Event) {
	select {
	case w.events <- ev:
	default:
		log.Printf("backend: event queue full, dropping %v", ev.Kind)
	}
}

// toGlobal converts client coordinates to virtual-screen coordinates.
func (w *windowsBackend) toGlobal(lParam uintptr) geom.Point {
	x := int32(int16(win.LOWORD(uint32(lParam))))
	y := int32(int16(win.HIWORD(uint32(lParam))))
	return geom.Point{
		X: float64(x) + w.bounds.X,
		Y: float64(y) + w.bounds.Y,
	}
}

func snapModifierDown() bool {
	return uint16(win.GetKeyState(win.VK_CONTROL))&0x8000 != 0
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	w := active
	if w == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case wmAppPresent:
		win.InvalidateRect(hwnd, nil, false)
		win.UpdateWindow(hwnd)
		return 0

	case wmAppClickThrough:
		style := win.GetWindowLong(hwnd, win.GWL_EXSTYLE)
		if wParam != 0 {
			style |= win.WS_EX_TRANSPARENT
		} else {
			style &^= win.WS_EX_TRANSPARENT
		}
		win.SetWindowLong(hwnd, win.GWL_EXSTYLE, style)
		return 0

	case wmAppCursor:
		w.cursorCrosshair = wParam != 0
		if w.cursorCrosshair {
			win.SetCursor(w.crossCursor)
		} else {
			win.SetCursor(w.arrowCursor)
		}
		return 0

	case wmAppFocus:
		procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
		win.SetForegroundWindow(hwnd)
		win.BringWindowToTop(hwnd)
		win.SetFocus(hwnd)
		return 0

	case wmAppCapture:
		win.SetCapture(hwnd)
		return 0

	case wmAppRelease:
		win.ReleaseCapture()
		return 0

	case wmAppClose:
		win.DestroyWindow(hwnd)
		return 0

	case win.WM_LBUTTONDOWN:
		w.postEvent(Event{Kind: EventButtonDown, Pos: w.toGlobal(lParam), Snap: snapModifierDown()})
		return 0

	case win.WM_MOUSEMOVE:
		w.postEvent(Event{Kind: EventPointerMove, Pos: w.toGlobal(lParam), Snap: snapModifierDown()})
		return 0

	case win.WM_LBUTTONUP:
		w.postEvent(Event{Kind: EventButtonUp, Pos: w.toGlobal(lParam), Snap: snapModifierDown()})
		return 0

	case win.WM_KEYDOWN:
		if wParam == win.VK_ESCAPE {
			w.postEvent(Event{Kind: EventEscape})
		}
		return 0

	case win.WM_SETCURSOR:
		if w.cursorCrosshair {
			win.SetCursor(w.crossCursor)
		} else {
			win.SetCursor(w.arrowCursor)
		}
		return 1

	case win.WM_NCHITTEST:
		return uintptr(win.HTCLIENT)

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		w.paint(hdc)
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_DESTROY:
		win.PostQuitMessage(0)
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// paint renders the current frame double-buffered onto the window.
func (w *windowsBackend) paint(hdc win.HDC) {
	w.mu.Lock()
	frame := w.frame
	w.mu.Unlock()

	width := int32(w.bounds.W)
	height := int32(w.bounds.H)

	memDC := win.CreateCompatibleDC(hdc)
	defer win.DeleteDC(memDC)
	bmp := win.CreateCompatibleBitmap(hdc, width, height)
	defer win.DeleteObject(win.HGDIOBJ(bmp))
	oldBmp := win.SelectObject(memDC, win.HGDIOBJ(bmp))
	defer win.SelectObject(memDC, oldBmp)

	// Key-colored background reads as fully transparent.
	keyBrush := createSolidBrush(colorKey)
	oldBrush := win.SelectObject(memDC, win.HGDIOBJ(keyBrush))
	nullPen := win.GetStockObject(win.NULL_PEN)
	oldPen := win.SelectObject(memDC, nullPen)
	procRectangle.Call(uintptr(memDC), 0, 0, uintptr(width+1), uintptr(height+1))
	win.SelectObject(memDC, oldPen)
	win.SelectObject(memDC, oldBrush)
	win.DeleteObject(win.HGDIOBJ(keyBrush))

	for _, cmd := range frame {
		w.paintCommand(memDC, cmd)
	}

	win.BitBlt(hdc, 0, 0, width, height, memDC, 0, 0, win.SRCCOPY)
}

func (w *windowsBackend) paintCommand(hdc win.HDC, cmd draw.Command) {
	switch c := cmd.(type) {
	case draw.Line:
		pen := createSolidPen(c.Width, c.Color)
		old := win.SelectObject(hdc, win.HGDIOBJ(pen))
		win.MoveToEx(hdc, int(w.px(c.X1)), int(w.py(c.Y1)), nil)
		win.LineTo(hdc, w.px(c.X2), w.py(c.Y2))
		win.SelectObject(hdc, old)
		win.DeleteObject(win.HGDIOBJ(pen))

	case draw.FillCircle:
		brush := createSolidBrush(colorRef(c.Color))
		oldBrush := win.SelectObject(hdc, win.HGDIOBJ(brush))
		oldPen := win.SelectObject(hdc, win.GetStockObject(win.NULL_PEN))
		r := c.Radius
		procEllipse.Call(uintptr(hdc),
			uintptr(w.px(c.X-r)), uintptr(w.py(c.Y-r)),
			uintptr(w.px(c.X+r)+1), uintptr(w.py(c.Y+r)+1))
		win.SelectObject(hdc, oldPen)
		win.SelectObject(hdc, oldBrush)
		win.DeleteObject(win.HGDIOBJ(brush))

	case draw.StrokeCircle:
		pen := createSolidPen(c.Width, c.Color)
		oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
		oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))
		r := c.Radius
		procEllipse.Call(uintptr(hdc),
			uintptr(w.px(c.X-r)), uintptr(w.py(c.Y-r)),
			uintptr(w.px(c.X+r)+1), uintptr(w.py(c.Y+r)+1))
		win.SelectObject(hdc, oldBrush)
		win.SelectObject(hdc, oldPen)
		win.DeleteObject(win.HGDIOBJ(pen))

	case draw.FillRect:
		brush := createSolidBrush(colorRef(c.Color))
		oldBrush := win.SelectObject(hdc, win.HGDIOBJ(brush))
		oldPen := win.SelectObject(hdc, win.GetStockObject(win.NULL_PEN))
		procRectangle.Call(uintptr(hdc),
			uintptr(w.px(c.X)), uintptr(w.py(c.Y)),
			uintptr(w.px(c.X+c.W)+1), uintptr(w.py(c.Y+c.H)+1))
		win.SelectObject(hdc, oldPen)
		win.SelectObject(hdc, oldBrush)
		win.DeleteObject(win.HGDIOBJ(brush))

	case draw.Text:
		font := createOverlayFont(c.Size, c.Bold)
		if font == 0 {
			return
		}
		old := win.SelectObject(hdc, win.HGDIOBJ(font))
		win.SetBkMode(hdc, win.TRANSPARENT)
		win.SetTextColor(hdc, colorRef(c.Color))
		utf16 := syscall.StringToUTF16Ptr(c.Text)
		win.TextOut(hdc, w.px(c.X), w.py(c.Y), utf16, int32(len(c.Text)))
		win.SelectObject(hdc, old)
		win.DeleteObject(win.HGDIOBJ(font))
	}
}

// px and py map virtual-screen coordinates to client coordinates.
func (w *windowsBackend) px(x float64) int32 {
	return int32(math.Round(x - w.bounds.X))
}

func (w *windowsBackend) py(y float64) int32 {
	return int32(math.Round(y - w.bounds.Y))
}

// colorRef converts to a GDI BGR color. The color-keyed window has no
// per-pixel alpha, so opacity is approximated by scaling toward black.
func colorRef(c draw.Color) win.COLORREF {
	scale := func(v float64) uint32 {
		n := int(v * c.A * 255)
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		return uint32(n)
	}
	ref := win.COLORREF(scale(c.R) | scale(c.G)<<8 | scale(c.B)<<16)
	if ref == colorKey {
		ref ^= 0x010101
	}
	return ref
}

func createSolidBrush(ref win.COLORREF) win.HBRUSH {
	brush, _, _ := procCreateSolidBrush.Call(uintptr(ref))
	return win.HBRUSH(brush)
}

func createSolidPen(width float64, c draw.Color) win.HPEN {
	w := int32(math.Round(width))
	if w < 1 {
		w = 1
	}
	pen, _, _ := procCreatePen.Call(0, uintptr(w), uintptr(colorRef(c)))
	return win.HPEN(pen)
}

func createOverlayFont(size float64, bold bool) win.HFONT {
	weight := int32(win.FW_NORMAL)
	if bold {
		weight = win.FW_BOLD
	}
	lf := win.LOGFONT{
		LfHeight:  -int32(math.Round(size)),
		LfWeight:  weight,
		LfQuality: win.CLEARTYPE_QUALITY,
	}
	face := syscall.StringToUTF16("Segoe UI")
	copy(lf.LfFaceName[:], face)
	return win.CreateFontIndirect(&lf)
}
