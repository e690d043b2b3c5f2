// Package diagnostics captures screenshots of the automated window when an
// operation fails, so intermittent UI-layout failures can be inspected after
// the fact.
package diagnostics

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kbinani/screenshot"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"
)

// Recorder writes labeled PNG captures of a window region into a directory.
type Recorder struct {
	dir string
	log *slog.Logger
}

// NewRecorder returns a recorder that stores captures under dir. The
// directory is created lazily on first capture.
func NewRecorder(dir string, log *slog.Logger) *Recorder {
	return &Recorder{dir: dir, log: log}
}

// Capture grabs the window's on-screen rectangle and writes it as a PNG
// stamped with the operation name. It returns the written path. Failures
// here must never mask the original automation error, so callers are
// expected to log the returned error and move on.
func (r *Recorder) Capture(win platform.WindowInfo, operation string) (string, error) {
	if r == nil {
		return "", nil
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create diagnostics dir: %w", err)
	}

	rect := image.Rect(win.Bounds.X, win.Bounds.Y,
		win.Bounds.X+win.Bounds.Width, win.Bounds.Y+win.Bounds.Height)
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return "", fmt.Errorf("capture window rect: %w", err)
	}

	labeled := annotate(img, fmt.Sprintf("%s %s", operation, time.Now().Format(time.RFC3339)))

	name := fmt.Sprintf("%s-%s.png", operation, time.Now().Format("20060102-150405"))
	path := filepath.Join(r.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create screenshot file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, labeled); err != nil {
		return "", fmt.Errorf("encode screenshot: %w", err)
	}
	r.log.Info("wrote diagnostic screenshot", "path", path, "operation", operation)
	return path, nil
}

// annotate burns a one-line label into the top-left corner of the capture.
func annotate(src image.Image, label string) image.Image {
	b := src.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, src, b.Min, draw.Src)

	// Dark strip behind the text keeps the label readable on any content.
	strip := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+16)
	draw.Draw(out, strip, image.NewUniform(color.RGBA{0, 0, 0, 200}), image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(b.Min.X+4, b.Min.Y+12),
	}
	d.DrawString(label)
	return out
}
