package chatgpt

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/config"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"
)

// titleKeywords drive the fallback scan when no configured pattern matches.
var titleKeywords = []string{"chatgpt", "openai", "gpt"}

// Locator finds, focuses and validates the ChatGPT window. A successful
// locate is cached; the cache is soft and is revalidated against the OS on
// every reuse, so it may always be discarded and rebuilt.
type Locator struct {
	windows platform.WindowAPI
	cfg     config.WindowDetection
	log     *slog.Logger

	mu       sync.Mutex
	cached   uintptr
	cachedAt time.Time
}

// NewLocator returns a locator using the given window API.
func NewLocator(windows platform.WindowAPI, cfg config.WindowDetection, log *slog.Logger) *Locator {
	return &Locator{windows: windows, cfg: cfg, log: log}
}

// Locate finds the ChatGPT window. With forceRefresh the cache is bypassed.
// A cached handle is reused only while the cache timeout has not elapsed
// and the handle still passes validation.
func (l *Locator) Locate(forceRefresh bool) (platform.WindowInfo, error) {
	if !forceRefresh {
		if win, ok := l.cachedWindow(); ok {
			return win, nil
		}
	}

	win, err := l.search()
	if err != nil {
		return platform.WindowInfo{}, err
	}

	l.mu.Lock()
	l.cached = win.Handle
	l.cachedAt = time.Now()
	l.mu.Unlock()

	l.log.Info("located chatgpt window", "title", win.Title, "handle", fmt.Sprintf("%#x", win.Handle))
	return win, nil
}

// cachedWindow returns a fresh snapshot of the cached handle if the cache
// is still within its validity window and the window still validates.
func (l *Locator) cachedWindow() (platform.WindowInfo, bool) {
	l.mu.Lock()
	handle, at := l.cached, l.cachedAt
	l.mu.Unlock()

	if handle == 0 || time.Since(at) > l.cfg.CacheTimeout.Std() {
		return platform.WindowInfo{}, false
	}
	if !l.windows.IsWindow(handle) {
		return platform.WindowInfo{}, false
	}
	win, err := l.windows.QueryWindow(handle)
	if err != nil || !l.acceptable(win) {
		return platform.WindowInfo{}, false
	}
	return win, true
}

// search tries, in order: configured title patterns, a keyword scan over
// all window titles, and finally a keyword scan restricted to visible
// windows. First accepted candidate wins; candidates are not ranked.
func (l *Locator) search() (platform.WindowInfo, error) {
	all, err := l.windows.ListWindows()
	if err != nil {
		return platform.WindowInfo{}, fmt.Errorf("window enumeration: %w", err)
	}

	for _, pattern := range l.cfg.TitlePatterns {
		p := strings.ToLower(pattern)
		for _, w := range all {
			if strings.Contains(strings.ToLower(w.Title), p) && l.acceptable(w) {
				return w, nil
			}
		}
	}

	for _, w := range all {
		if matchesKeyword(w.Title) && l.acceptable(w) {
			return w, nil
		}
	}

	for _, w := range all {
		if w.Visible && matchesKeyword(w.Title) && l.acceptable(w) {
			return w, nil
		}
	}

	return platform.WindowInfo{}, fmt.Errorf("no chatgpt window found among %d windows", len(all))
}

// acceptable rejects invisible windows and toast/tooltip-sized false
// positives.
func (l *Locator) acceptable(w platform.WindowInfo) bool {
	return w.Visible &&
		w.Bounds.Width >= l.cfg.MinWindowWidth &&
		w.Bounds.Height >= l.cfg.MinWindowHeight
}

func matchesKeyword(title string) bool {
	if title == "" {
		return false
	}
	t := strings.ToLower(title)
	for _, kw := range titleKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// Focus brings the window to the foreground. A minimized window is restored
// first. Success is confirmed by re-reading the OS foreground window, not
// assumed from the raise call; the confirm-and-retry loop runs up to the
// configured attempt count.
func (l *Locator) Focus(win platform.WindowInfo) error {
	attempts := l.cfg.FocusRetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if win.State == platform.StateMinimized {
			if err := l.windows.Restore(win.Handle); err != nil {
				lastErr = fmt.Errorf("restore: %w", err)
				continue
			}
			time.Sleep(l.cfg.RestoreDelay.Std())
		}

		if err := l.windows.SetForeground(win.Handle); err != nil {
			lastErr = fmt.Errorf("set foreground: %w", err)
		} else {
			time.Sleep(l.cfg.FocusSettleDelay.Std())
			fg, err := l.windows.Foreground()
			if err == nil && fg == win.Handle {
				return nil
			}
			lastErr = fmt.Errorf("window %#x did not reach foreground", win.Handle)
		}

		if attempt < attempts {
			time.Sleep(l.cfg.FocusRetryDelay.Std())
		}
	}
	return lastErr
}

// Validate re-checks liveness, visibility and minimum size. Used before
// every send/capture cycle because windows can close or shrink between
// operations.
func (l *Locator) Validate(win platform.WindowInfo) bool {
	if !l.windows.IsWindow(win.Handle) {
		return false
	}
	fresh, err := l.windows.QueryWindow(win.Handle)
	if err != nil {
		return false
	}
	if !fresh.Visible {
		l.log.Warn("chatgpt window is not visible")
		return false
	}
	if fresh.Bounds.Width < l.cfg.MinWindowWidth || fresh.Bounds.Height < l.cfg.MinWindowHeight {
		l.log.Warn("chatgpt window is too small",
			"width", fresh.Bounds.Width, "height", fresh.Bounds.Height)
		return false
	}
	return true
}

// All returns every window that matches the detection heuristics,
// deduplicated by handle. Used by the locate CLI command.
func (l *Locator) All() ([]platform.WindowInfo, error) {
	all, err := l.windows.ListWindows()
	if err != nil {
		return nil, fmt.Errorf("window enumeration: %w", err)
	}
	seen := make(map[uintptr]bool)
	var out []platform.WindowInfo
	for _, w := range all {
		if seen[w.Handle] || !l.acceptable(w) {
			continue
		}
		if matchesKeyword(w.Title) || matchesAnyPattern(w.Title, l.cfg.TitlePatterns) {
			seen[w.Handle] = true
			out = append(out, w)
		}
	}
	return out, nil
}

func matchesAnyPattern(title string, patterns []string) bool {
	t := strings.ToLower(title)
	for _, p := range patterns {
		if strings.Contains(t, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
