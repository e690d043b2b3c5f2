//go:build windows

package windows

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var clipInit sync.Once

// Clipboard implements platform.Clipboard over the system clipboard.
type Clipboard struct {
	mu sync.Mutex
}

// NewClipboard initializes the clipboard subsystem once per process.
func NewClipboard() (*Clipboard, error) {
	var err error
	clipInit.Do(func() {
		err = clipboard.Init()
	})
	if err != nil {
		return nil, fmt.Errorf("clipboard init: %w", err)
	}
	return &Clipboard{}, nil
}

// ReadText returns the current text content of the clipboard.
func (c *Clipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// WriteText replaces the clipboard text. The write is mutex-guarded to
// prevent corruption when an automation operation and a restore race.
func (c *Clipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
