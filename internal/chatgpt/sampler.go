package chatgpt

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"
)

// Sampler pulls the current text out of a window's output region. An empty
// string with a nil error means nothing new could be read this round.
type Sampler interface {
	Sample(win platform.WindowInfo) (string, error)
}

// selectionSampler captures text with select-all + copy from the estimated
// response area, diffing the clipboard before and after to tell a real
// capture from leftovers. The clipboard is restored afterwards so user
// clipboard state survives the read.
type selectionSampler struct {
	input platform.Inputter
	clip  platform.Clipboard
	log   *slog.Logger
}

// NewSelectionSampler returns the clipboard-based sampler used in
// production. No OCR or accessibility API is involved.
func NewSelectionSampler(input platform.Inputter, clip platform.Clipboard, log *slog.Logger) Sampler {
	return &selectionSampler{input: input, clip: clip, log: log}
}

func (s *selectionSampler) Sample(win platform.WindowInfo) (string, error) {
	original, err := s.clip.ReadText()
	if err != nil {
		s.log.Debug("could not snapshot clipboard before capture", "error", err)
		original = ""
	}

	x, y, ok := estimateResponseArea(win.Bounds)
	if !ok {
		return "", fmt.Errorf("cannot estimate response area inside %v", win.Bounds)
	}
	if err := s.input.Click(x, y); err != nil {
		return "", fmt.Errorf("click response area: %w", err)
	}
	time.Sleep(fieldSettle)

	if err := s.input.KeyTap("a", "ctrl"); err != nil {
		return "", fmt.Errorf("select all: %w", err)
	}
	time.Sleep(fieldSettle)
	if err := s.input.KeyTap("c", "ctrl"); err != nil {
		return "", fmt.Errorf("copy: %w", err)
	}
	time.Sleep(300 * time.Millisecond)

	captured, err := s.clip.ReadText()
	if err != nil {
		return "", fmt.Errorf("read clipboard after copy: %w", err)
	}

	if err := s.clip.WriteText(original); err != nil {
		s.log.Warn("could not restore clipboard after capture", "error", err)
	}

	// Unchanged clipboard means the copy picked up nothing new.
	if captured == original {
		return "", nil
	}
	return captured, nil
}
