package platform

import "fmt"

// WindowState describes the placement of a top-level window.
type WindowState int

const (
	StateNormal WindowState = iota
	StateMinimized
	StateMaximized
)

// String returns the lowercase name of the state.
func (s WindowState) String() string {
	switch s {
	case StateMinimized:
		return "minimized"
	case StateMaximized:
		return "maximized"
	default:
		return "normal"
	}
}

// Bounds represents a screen rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

// Contains reports whether the point (x, y) lies within the rectangle.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

// WindowInfo is a snapshot of a top-level window taken at lookup time.
// The snapshot goes stale as soon as the window moves or closes; callers
// that need fresh metadata re-query through WindowAPI.
//
// A window reported StateNormal or StateMaximized is always visible.
// A StateMinimized window may still accept input after a restore.
type WindowInfo struct {
	Handle  uintptr
	Title   string
	Bounds  Bounds
	Visible bool
	State   WindowState
	PID     int
}

func (w WindowInfo) String() string {
	return fmt.Sprintf("window %#x %q %dx%d (%s, pid %d)",
		w.Handle, w.Title, w.Bounds.Width, w.Bounds.Height, w.State, w.PID)
}
