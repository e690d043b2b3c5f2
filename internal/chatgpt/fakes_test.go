package chatgpt

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Test doubles for the platform interfaces. Kept in one file because every
// test in the package composes them.

type fakeWindows struct {
	windows    []platform.WindowInfo
	listErr    error
	setFgErr   error
	restoreErr error

	// focusSticks controls whether SetForeground actually lands: when
	// false, Foreground keeps reporting the old handle.
	focusSticks bool
	foreground  uintptr

	restored   []uintptr
	setFgCalls int
	queryCalls int
}

func (f *fakeWindows) ListWindows() ([]platform.WindowInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.windows, nil
}

func (f *fakeWindows) QueryWindow(handle uintptr) (platform.WindowInfo, error) {
	f.queryCalls++
	for _, w := range f.windows {
		if w.Handle == handle {
			return w, nil
		}
	}
	return platform.WindowInfo{}, fmt.Errorf("no window %#x", handle)
}

func (f *fakeWindows) IsWindow(handle uintptr) bool {
	for _, w := range f.windows {
		if w.Handle == handle {
			return true
		}
	}
	return false
}

func (f *fakeWindows) Restore(handle uintptr) error {
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.restored = append(f.restored, handle)
	for i := range f.windows {
		if f.windows[i].Handle == handle {
			f.windows[i].State = platform.StateNormal
		}
	}
	return nil
}

func (f *fakeWindows) SetForeground(handle uintptr) error {
	f.setFgCalls++
	if f.setFgErr != nil {
		return f.setFgErr
	}
	if f.focusSticks {
		f.foreground = handle
	}
	return nil
}

func (f *fakeWindows) Foreground() (uintptr, error) {
	return f.foreground, nil
}

type fakeInput struct {
	mu     sync.Mutex
	clicks [][2]int
	typed  strings.Builder
	taps   []string // "key+mod1+mod2"

	clickErr error
	typeErr  error
	tapErr   map[string]error // keyed by the same "key+mods" form

	// onTap, when set, runs after a recorded keystroke. Tests use it to
	// emulate UI side effects such as copy filling the clipboard.
	onTap func(tap string)
}

func (f *fakeInput) Click(x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicks = append(f.clicks, [2]int{x, y})
	return nil
}

func (f *fakeInput) TypeText(text string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.typeErr != nil {
		return f.typeErr
	}
	f.typed.WriteString(text)
	return nil
}

func (f *fakeInput) KeyTap(key string, modifiers ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tap := strings.Join(append([]string{key}, modifiers...), "+")
	if err := f.tapErr[tap]; err != nil {
		return err
	}
	f.taps = append(f.taps, tap)
	if f.onTap != nil {
		f.onTap(tap)
	}
	return nil
}

func (f *fakeInput) tapped(tap string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.taps {
		if t == tap {
			n++
		}
	}
	return n
}

type fakeClipboard struct {
	mu       sync.Mutex
	contents string
	writes   []string
	readErr  error
	writeErr error

	// failWritesAfter fails every write once this many have succeeded.
	// Zero means no limit.
	failWritesAfter int
}

func (f *fakeClipboard) ReadText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.contents, nil
}

func (f *fakeClipboard) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.failWritesAfter > 0 && len(f.writes) >= f.failWritesAfter {
		return fmt.Errorf("clipboard write rejected")
	}
	f.contents = text
	f.writes = append(f.writes, text)
	return nil
}

// fakeSampler replays a scripted sequence of captures; the final entry
// repeats once the script is exhausted.
type fakeSampler struct {
	mu      sync.Mutex
	samples []string
	errs    []error
	calls   int
}

func (f *fakeSampler) Sample(_ platform.WindowInfo) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i >= len(f.samples) {
		i = len(f.samples) - 1
	}
	if i < 0 {
		return "", nil
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return f.samples[i], err
}

type fakeFocuser struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeFocuser) Focus(_ platform.WindowInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}
