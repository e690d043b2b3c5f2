package platform

import "time"

// WindowAPI exposes the OS window layer: enumeration, metadata refresh,
// placement changes and foreground control.
type WindowAPI interface {
	// ListWindows returns a snapshot of every top-level window.
	ListWindows() ([]WindowInfo, error)

	// QueryWindow re-reads metadata for an existing handle.
	QueryWindow(handle uintptr) (WindowInfo, error)

	// IsWindow reports whether the handle still references a live window.
	IsWindow(handle uintptr) bool

	// Restore brings a minimized window back to its previous placement.
	Restore(handle uintptr) error

	// SetForeground raises the window and gives it keyboard focus.
	SetForeground(handle uintptr) error

	// Foreground returns the handle of the current foreground window.
	Foreground() (uintptr, error)
}

// Inputter synthesizes mouse and keyboard input. All input goes to
// whichever window currently holds keyboard focus.
type Inputter interface {
	Click(x, y int) error
	TypeText(text string, delay time.Duration) error
	KeyTap(key string, modifiers ...string) error
}

// Clipboard reads and writes the system clipboard text slot.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}
