package chatgpt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chaterr"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/config"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/diagnostics"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/version"
)

// Coordinator sequences the full automation flows: locate and focus the
// window, deliver a message, await the reply, extract history, reset the
// conversation. It owns no retry logic; callers decide whether a failed
// flow is worth re-running.
type Coordinator struct {
	cfg      *config.Config
	log      *slog.Logger
	locator  *Locator
	injector *Injector
	poller   *Poller
	metrics  *Metrics
	recorder *diagnostics.Recorder
	input    platform.Inputter
}

// New wires a coordinator from a platform provider and configuration.
func New(p platform.Provider, cfg *config.Config, log *slog.Logger) *Coordinator {
	locator := NewLocator(p.Windows, cfg.WindowDetection, log)
	sampler := NewSelectionSampler(p.Input, p.Clipboard, log)

	c := &Coordinator{
		cfg:      cfg,
		log:      log,
		locator:  locator,
		injector: NewInjector(p.Input, p.Clipboard, cfg.Automation, log),
		poller:   NewPoller(locator, sampler, cfg.Automation, log),
		metrics:  NewMetrics(),
		input:    p.Input,
	}
	if cfg.Automation.ScreenshotOnError {
		c.recorder = diagnostics.NewRecorder(cfg.Automation.ScreenshotDir, log)
	}
	return c
}

// Locator exposes the window locator for the locate command.
func (c *Coordinator) Locator() *Locator { return c.locator }

// Preview reports which delivery path a payload would take.
func (c *Coordinator) Preview(text string) string { return c.injector.Preview(text) }

// SendAndAwait delivers a message and waits for the reply. A timeout of
// zero or less falls back to the configured response timeout. The returned
// string is the cleaned reply, which may be a partial answer if the budget
// ran out mid-stream.
func (c *Coordinator) SendAndAwait(ctx context.Context, text string, timeout time.Duration) (string, error) {
	log := c.opLog("send_message")
	start := time.Now()

	reply, err := c.sendAndAwait(ctx, log, text, timeout)
	c.metrics.Record("send_message", time.Since(start), err)
	return reply, err
}

func (c *Coordinator) sendAndAwait(ctx context.Context, log *slog.Logger, text string, timeout time.Duration) (string, error) {
	if text == "" {
		return "", chaterr.Validation("message", "message must not be empty")
	}
	if max := c.cfg.Automation.MaxMessageLength; max > 0 && len(text) > max {
		return "", chaterr.Validation("message",
			fmt.Sprintf("message length %d exceeds limit %d", len(text), max))
	}
	if timeout <= 0 {
		timeout = c.cfg.Automation.ResponseTimeout.Std()
	}

	win, err := c.acquireWindow(log)
	if err != nil {
		return "", err
	}

	log.Info("sending message", "chars", len(text), "delivery", c.injector.Preview(text))
	if err := c.injector.Send(win, text); err != nil {
		c.screenshotOnError(win, "send_message")
		return "", chaterr.Automation("send_message", err)
	}
	if err := c.input.KeyTap("enter"); err != nil {
		c.screenshotOnError(win, "send_message")
		return "", chaterr.Automation("send_message", fmt.Errorf("submit message: %w", err))
	}

	reply, err := c.poller.AwaitResponse(ctx, win, timeout)
	if err != nil {
		c.screenshotOnError(win, "capture_response")
		if chaterr.As(err) != nil {
			return "", err
		}
		return "", chaterr.Automation("capture_response", err)
	}
	log.Info("captured response", "chars", len(reply))
	return reply, nil
}

// History reconstructs recent conversation turns. A window that cannot be
// found or focused yields an empty history rather than an error: callers
// asking "what has been said" get "nothing" when there is no conversation
// to read.
func (c *Coordinator) History(ctx context.Context, maxTurns int) ([]Turn, error) {
	log := c.opLog("get_conversation_history")
	start := time.Now()

	turns, err := c.history(ctx, log, maxTurns)
	c.metrics.Record("get_conversation_history", time.Since(start), err)
	return turns, err
}

func (c *Coordinator) history(ctx context.Context, log *slog.Logger, maxTurns int) ([]Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxTurns <= 0 {
		maxTurns = c.cfg.Automation.MaxHistoryTurns
	}

	win, err := c.acquireWindow(log)
	if err != nil {
		log.Warn("no readable conversation window, returning empty history", "error", err)
		return []Turn{}, nil
	}

	raw, err := c.poller.Capture(win)
	if err != nil {
		c.screenshotOnError(win, "get_conversation_history")
		return nil, chaterr.Automation("get_conversation_history", err)
	}

	turns := ParseTurns(c.poller.Clean(raw), maxTurns)
	log.Info("extracted history", "turns", len(turns))
	return turns, nil
}

// Reset starts a new conversation with the app's new-chat shortcut, falling
// back to the alternate binding if the first appears not to have cleared
// the view.
func (c *Coordinator) Reset(ctx context.Context) error {
	log := c.opLog("reset_conversation")
	start := time.Now()

	err := c.reset(ctx, log)
	c.metrics.Record("reset_conversation", time.Since(start), err)
	return err
}

func (c *Coordinator) reset(ctx context.Context, log *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	win, err := c.acquireWindow(log)
	if err != nil {
		return err
	}

	if err := c.input.KeyTap("n", "ctrl"); err != nil {
		c.screenshotOnError(win, "reset_conversation")
		return chaterr.Automation("reset_conversation", fmt.Errorf("new chat shortcut: %w", err))
	}
	time.Sleep(c.cfg.Automation.ResetSettleDelay.Std())

	if c.conversationCleared(win) {
		log.Info("conversation reset")
		return nil
	}

	// Some builds of the app bind new-chat to ctrl+shift+n instead.
	log.Warn("conversation did not clear, trying alternate shortcut")
	if err := c.input.KeyTap("n", "ctrl", "shift"); err != nil {
		c.screenshotOnError(win, "reset_conversation")
		return chaterr.Automation("reset_conversation", fmt.Errorf("alternate new chat shortcut: %w", err))
	}
	time.Sleep(c.cfg.Automation.ResetSettleDelay.Std())
	log.Info("conversation reset via alternate shortcut")
	return nil
}

// conversationCleared samples the response area after a reset shortcut.
// An empty capture means the view cleared. A failed capture is treated as
// cleared: there is no reliable signal to the contrary, and re-firing the
// shortcut on a cleared view is harmless.
func (c *Coordinator) conversationCleared(win platform.WindowInfo) bool {
	raw, err := c.poller.Capture(win)
	if err != nil {
		c.log.Debug("could not verify reset, assuming cleared", "error", err)
		return true
	}
	return c.poller.Clean(raw) == ""
}

// acquireWindow locates, focuses and validates the target window. Locate
// and focus failures are terminal for the operation; a validation miss is
// only logged, since the fresh snapshot may be stale the instant it is
// taken.
func (c *Coordinator) acquireWindow(log *slog.Logger) (platform.WindowInfo, error) {
	win, err := c.locator.Locate(false)
	if err != nil {
		return platform.WindowInfo{}, chaterr.WindowNotFound(err.Error())
	}
	if err := c.locator.Focus(win); err != nil {
		return platform.WindowInfo{}, chaterr.WindowNotFound(
			fmt.Sprintf("found window %q but could not focus it: %v", win.Title, err))
	}
	if !c.locator.Validate(win) {
		log.Warn("window failed validation after focus, continuing", "title", win.Title)
	}
	return win, nil
}

func (c *Coordinator) screenshotOnError(win platform.WindowInfo, operation string) {
	if c.recorder == nil {
		return
	}
	if _, err := c.recorder.Capture(win, operation); err != nil {
		c.log.Warn("diagnostic screenshot failed", "error", err)
	}
}

func (c *Coordinator) opLog(operation string) *slog.Logger {
	return c.log.With("op_id", uuid.NewString()[:8], "operation", operation)
}

// DebugInfo is the payload for the debug tool: build identity, window
// state as currently known, effective limits, and operation counters.
type DebugInfo struct {
	Version   string         `json:"version" yaml:"version"`
	Window    *WindowReport  `json:"window,omitempty" yaml:"window,omitempty"`
	Settings  SettingsReport `json:"settings" yaml:"settings"`
	Metrics   Snapshot       `json:"metrics" yaml:"metrics"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
}

// WindowReport summarizes the located window.
type WindowReport struct {
	Title   string `json:"title" yaml:"title"`
	Handle  string `json:"handle" yaml:"handle"`
	State   string `json:"state" yaml:"state"`
	Width   int    `json:"width" yaml:"width"`
	Height  int    `json:"height" yaml:"height"`
	Visible bool   `json:"visible" yaml:"visible"`
}

// SettingsReport lists the effective limits that shape tool behavior.
type SettingsReport struct {
	ClipboardThreshold int             `json:"clipboard_threshold" yaml:"clipboard_threshold"`
	MaxMessageLength   int             `json:"max_message_length" yaml:"max_message_length"`
	MaxResponseLength  int             `json:"max_response_length" yaml:"max_response_length"`
	MaxHistoryTurns    int             `json:"max_history_turns" yaml:"max_history_turns"`
	ResponseTimeout    config.Duration `json:"response_timeout" yaml:"response_timeout"`
	PollInterval       config.Duration `json:"poll_interval" yaml:"poll_interval"`
}

// DebugInfo gathers a diagnostic snapshot. Window lookup failures are not
// errors here; an unlocatable window is exactly the state the caller is
// trying to diagnose.
func (c *Coordinator) DebugInfo(ctx context.Context) DebugInfo {
	info := DebugInfo{
		Version: version.Version,
		Settings: SettingsReport{
			ClipboardThreshold: c.cfg.Automation.ClipboardThreshold,
			MaxMessageLength:   c.cfg.Automation.MaxMessageLength,
			MaxResponseLength:  c.cfg.Automation.MaxResponseLength,
			MaxHistoryTurns:    c.cfg.Automation.MaxHistoryTurns,
			ResponseTimeout:    c.cfg.Automation.ResponseTimeout,
			PollInterval:       c.cfg.Automation.PollInterval,
		},
		Metrics:   c.metrics.Snapshot(),
		Timestamp: time.Now(),
	}

	if ctx.Err() == nil {
		if win, err := c.locator.Locate(false); err == nil {
			info.Window = &WindowReport{
				Title:   win.Title,
				Handle:  fmt.Sprintf("%#x", win.Handle),
				State:   win.State.String(),
				Width:   win.Bounds.Width,
				Height:  win.Bounds.Height,
				Visible: win.Visible,
			}
		}
	}
	return info
}
