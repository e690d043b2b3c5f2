//go:build windows

package windows

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

// Inputter implements platform.Inputter using robotgo event synthesis.
type Inputter struct{}

// NewInputter returns a new robotgo-backed inputter.
func NewInputter() *Inputter {
	return &Inputter{}
}

// Click moves the cursor to (x, y) and issues a left click.
func (i *Inputter) Click(x, y int) error {
	robotgo.Move(x, y)
	robotgo.MilliSleep(50)
	robotgo.Click("left", false)
	return nil
}

// TypeText emits text one character at a time with the given inter-character
// delay. Line breaks are the caller's concern; this types exactly what it is
// given.
func (i *Inputter) TypeText(text string, delay time.Duration) error {
	for _, r := range text {
		robotgo.TypeStr(string(r))
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return nil
}

// KeyTap presses and releases a key with optional modifiers,
// e.g. KeyTap("v", "ctrl") or KeyTap("enter", "shift").
func (i *Inputter) KeyTap(key string, modifiers ...string) error {
	args := make([]interface{}, len(modifiers))
	for n, m := range modifiers {
		args[n] = m
	}
	if err := robotgo.KeyTap(key, args...); err != nil {
		return fmt.Errorf("key tap %q: %w", key, err)
	}
	return nil
}
