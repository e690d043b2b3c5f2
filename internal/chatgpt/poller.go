package chatgpt

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chaterr"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/config"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"
)

// minCompleteLength is the trimmed length below which a sample is assumed
// to be a still-arriving fragment rather than a final answer.
const minCompleteLength = 10

// streamingIndicators mark a reply that is still being produced. The check
// runs against the lowercased, trimmed tail of a sample.
var streamingIndicators = []string{"...", "typing...", "thinking..."}

// uiChromeLine matches interface text that select-all capture drags in
// alongside the actual reply: app name, action buttons, timestamps, bare
// loading ellipses.
var uiChromeLine = regexp.MustCompile(`(?i)^(\d{1,2}:\d{2}\s*(AM|PM)|Copy|Share|Like|Dislike|Report|Regenerate response|ChatGPT|New chat|\.{3})$`)

// truncationMarker is appended when a cleaned response is cut at the
// configured maximum length.
const truncationMarker = "... [truncated]"

// Focuser restores keyboard focus to a window. *Locator satisfies this.
type Focuser interface {
	Focus(win platform.WindowInfo) error
}

// Poller repeatedly samples the window's output area until a reply stops
// streaming. The target application exposes no completion signal, so this
// is a polling loop, not an event subscription.
type Poller struct {
	focuser Focuser
	sampler Sampler
	cfg     config.Automation
	log     *slog.Logger
}

// NewPoller returns a poller that re-focuses through focuser and reads
// through sampler.
func NewPoller(focuser Focuser, sampler Sampler, cfg config.Automation, log *slog.Logger) *Poller {
	return &Poller{focuser: focuser, sampler: sampler, cfg: cfg, log: log}
}

// AwaitResponse polls until a sample both differs from the previous one and
// passes the completeness test, then returns it cleaned. When the budget
// runs out, the last captured sample is returned (cleaned) even if
// incomplete; a partial answer beats nothing. A timeout error is returned
// only when no sample was ever captured. Cancellation is cooperative: ctx
// is checked once per iteration, never mid-sample.
func (p *Poller) AwaitResponse(ctx context.Context, win platform.WindowInfo, budget time.Duration) (string, error) {
	if budget <= 0 {
		budget = p.cfg.ResponseTimeout.Std()
	}
	deadline := time.Now().Add(budget)
	interval := p.cfg.PollInterval.Std()

	var last string
	sampled := false

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			break
		}

		// Defensive re-focus: unrelated OS events steal foreground status.
		// A miss here is transient, the loop carries on until timeout.
		if err := p.focuser.Focus(win); err != nil {
			p.log.Warn("could not re-focus window during polling", "error", err)
		}

		current, err := p.sampler.Sample(win)
		if err != nil {
			p.log.Debug("sample failed, will re-poll", "error", err)
		} else if current != "" && current != last {
			// Completeness is only re-evaluated when the sample changed.
			if responseComplete(current) {
				return p.Clean(current), nil
			}
			last = current
			sampled = true
		}

		select {
		case <-ctx.Done():
		case <-time.After(interval):
		}
	}

	if sampled {
		p.log.Warn("response budget exhausted, returning last sample", "budget", budget)
		return p.Clean(last), nil
	}
	return "", chaterr.Timeout(budget, "")
}

// Capture takes a single raw sample without waiting for completeness.
// Used for history extraction where the conversation is already settled.
func (p *Poller) Capture(win platform.WindowInfo) (string, error) {
	return p.sampler.Sample(win)
}

// responseComplete decides whether a captured string looks like a finished
// reply. Empty or whitespace-only text is incomplete; so is text ending in
// a streaming indicator or shorter than the minimum length. The length is
// counted in runes, not bytes, so short non-ASCII fragments stay
// incomplete. Stripping a trailing ellipsis from an otherwise complete
// string flips the verdict.
func responseComplete(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, indicator := range streamingIndicators {
		if strings.HasSuffix(lower, indicator) {
			return false
		}
	}
	return utf8.RuneCountInString(trimmed) >= minCompleteLength
}

// Clean strips UI chrome lines, collapses blank lines and enforces the
// maximum response length. Applied once to the terminal string, not to
// every intermediate sample.
func (p *Poller) Clean(raw string) string {
	if raw == "" {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || uiChromeLine.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	result := strings.Join(lines, "\n")

	if max := p.cfg.MaxResponseLength; max > 0 && len(result) > max {
		p.log.Warn("response truncated", "limit", max, "original_length", len(result))
		// Back up to a rune boundary so the cut never leaves invalid UTF-8.
		cut := max
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut] + truncationMarker
	}
	return strings.TrimSpace(result)
}
