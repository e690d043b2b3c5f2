//go:build windows

package windows

import (
	"fmt"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procIsWindow                 = user32.NewProc("IsWindow")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
)

// WindowAPI implements platform.WindowAPI on top of user32.
type WindowAPI struct{}

// NewWindowAPI returns a new Win32-backed window API.
func NewWindowAPI() *WindowAPI {
	return &WindowAPI{}
}

// ListWindows enumerates all top-level windows, including invisible ones.
// Callers filter by visibility themselves.
func (a *WindowAPI) ListWindows() ([]platform.WindowInfo, error) {
	var handles []uintptr
	cb := windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		handles = append(handles, hwnd)
		return 1 // continue enumeration
	})
	ret, _, err := procEnumWindows.Call(cb, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}

	infos := make([]platform.WindowInfo, 0, len(handles))
	for _, h := range handles {
		info, err := a.QueryWindow(h)
		if err != nil {
			// Windows close mid-enumeration; skip, don't fail the listing.
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// QueryWindow re-reads metadata for an existing handle.
func (a *WindowAPI) QueryWindow(handle uintptr) (platform.WindowInfo, error) {
	if !a.IsWindow(handle) {
		return platform.WindowInfo{}, fmt.Errorf("window %#x no longer exists", handle)
	}

	hwnd := win.HWND(handle)

	var rect win.RECT
	if !win.GetWindowRect(hwnd, &rect) {
		return platform.WindowInfo{}, fmt.Errorf("GetWindowRect failed for %#x", handle)
	}

	var placement win.WINDOWPLACEMENT
	placement.Length = uint32(unsafe.Sizeof(placement))
	state := platform.StateNormal
	if win.GetWindowPlacement(hwnd, &placement) {
		switch placement.ShowCmd {
		case win.SW_SHOWMINIMIZED:
			state = platform.StateMinimized
		case win.SW_SHOWMAXIMIZED:
			state = platform.StateMaximized
		}
	}

	var pid uint32
	procGetWindowThreadProcessID.Call(handle, uintptr(unsafe.Pointer(&pid)))

	return platform.WindowInfo{
		Handle: handle,
		Title:  windowText(handle),
		Bounds: platform.Bounds{
			X:      int(rect.Left),
			Y:      int(rect.Top),
			Width:  int(rect.Right - rect.Left),
			Height: int(rect.Bottom - rect.Top),
		},
		Visible: win.IsWindowVisible(hwnd),
		State:   state,
		PID:     int(pid),
	}, nil
}

// IsWindow reports whether the handle still references a live window.
func (a *WindowAPI) IsWindow(handle uintptr) bool {
	ret, _, _ := procIsWindow.Call(handle)
	return ret != 0
}

// Restore brings a minimized window back to its previous placement.
func (a *WindowAPI) Restore(handle uintptr) error {
	win.ShowWindow(win.HWND(handle), win.SW_RESTORE)
	return nil
}

// SetForeground raises the window and gives it keyboard focus. The OS may
// refuse foreground changes from background processes; callers confirm via
// Foreground rather than trusting the call.
func (a *WindowAPI) SetForeground(handle uintptr) error {
	hwnd := win.HWND(handle)
	win.SetForegroundWindow(hwnd)
	win.BringWindowToTop(hwnd)
	return nil
}

// Foreground returns the handle of the current foreground window.
func (a *WindowAPI) Foreground() (uintptr, error) {
	hwnd := win.GetForegroundWindow()
	if hwnd == 0 {
		return 0, fmt.Errorf("no foreground window")
	}
	return uintptr(hwnd), nil
}

func windowText(handle uintptr) string {
	var buf [512]uint16
	n, _, _ := procGetWindowTextW.Call(handle, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
