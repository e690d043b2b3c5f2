package chatgpt

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/config"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"
)

// fieldSettle is the pause after clicking the input field so the UI can
// move keyboard focus before keystrokes arrive.
const fieldSettle = 200 * time.Millisecond

// clipboardSettle is the pause after clipboard writes and paste keystrokes.
const clipboardSettle = 100 * time.Millisecond

// Injector delivers a text payload into the focused window's input field.
// Payloads above the clipboard threshold are pasted; shorter ones are typed
// character by character so UIs that react to keystroke events still see
// them.
type Injector struct {
	input platform.Inputter
	clip  platform.Clipboard
	cfg   config.Automation
	log   *slog.Logger
}

// NewInjector returns an injector using the given input and clipboard
// backends.
func NewInjector(input platform.Inputter, clip platform.Clipboard, cfg config.Automation, log *slog.Logger) *Injector {
	return &Injector{input: input, clip: clip, cfg: cfg, log: log}
}

// Send places text into the window's input field. It does not submit;
// committing the message is a separate step owned by the caller so insert
// and commit stay independently retryable.
func (inj *Injector) Send(win platform.WindowInfo, text string) error {
	x, y, ok := estimateInputField(win.Bounds)
	if !ok {
		return fmt.Errorf("cannot estimate input field position inside %v", win.Bounds)
	}
	if err := inj.input.Click(x, y); err != nil {
		return fmt.Errorf("click input field: %w", err)
	}
	time.Sleep(fieldSettle)

	if len(text) > inj.cfg.ClipboardThreshold {
		return inj.sendViaClipboard(text)
	}
	return inj.sendViaTyping(text)
}

// sendViaTyping clears any stale content, then types the message with the
// configured inter-character delay. Embedded newlines become shift+enter so
// multi-line prompts don't submit early; a \r\n pair is one line break, not
// two.
func (inj *Injector) sendViaTyping(text string) error {
	if err := inj.input.KeyTap("a", "ctrl"); err != nil {
		return fmt.Errorf("select all: %w", err)
	}
	time.Sleep(clipboardSettle)

	delay := inj.cfg.TypingDelay.Std()
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' || r == '\r' {
			if r == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			if err := inj.input.KeyTap("enter", "shift"); err != nil {
				return fmt.Errorf("soft line break: %w", err)
			}
			continue
		}
		if err := inj.input.TypeText(string(r), delay); err != nil {
			return fmt.Errorf("type text: %w", err)
		}
	}
	inj.log.Debug("typed message", "chars", len(text))
	return nil
}

// sendViaClipboard pastes the message through the clipboard, then restores
// the previous clipboard contents. Restore failures are logged, not fatal:
// the message is already delivered at that point.
func (inj *Injector) sendViaClipboard(text string) error {
	original, err := inj.clip.ReadText()
	if err != nil {
		inj.log.Debug("could not read original clipboard contents", "error", err)
		original = ""
	}

	if err := inj.clip.WriteText(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	time.Sleep(clipboardSettle)

	if err := inj.input.KeyTap("a", "ctrl"); err != nil {
		return fmt.Errorf("select all: %w", err)
	}
	time.Sleep(clipboardSettle)
	if err := inj.input.KeyTap("v", "ctrl"); err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	time.Sleep(clipboardSettle)

	if err := inj.clip.WriteText(original); err != nil {
		inj.log.Warn("could not restore clipboard contents", "error", err)
	}
	inj.log.Debug("pasted message", "chars", len(text))
	return nil
}

// Preview reports which delivery path a payload would take. Exposed for the
// CLI's dry-run flag.
func (inj *Injector) Preview(text string) string {
	if len(text) > inj.cfg.ClipboardThreshold {
		return "clipboard"
	}
	if strings.ContainsAny(text, "\n\r") {
		return "typing (with soft line breaks)"
	}
	return "typing"
}
