package chatgpt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/config"
)

func automationConfig() config.Automation {
	return config.Automation{
		TypingDelay:        config.Duration(time.Microsecond),
		ClipboardThreshold: 20,
		MaxMessageLength:   2000,
		ResponseTimeout:    config.Duration(time.Second),
		PollInterval:       config.Duration(time.Millisecond),
		MaxResponseLength:  50000,
		MaxHistoryTurns:    10,
		ResetSettleDelay:   config.Duration(time.Millisecond),
	}
}

func TestSendTypesShortMessages(t *testing.T) {
	input := &fakeInput{}
	clip := &fakeClipboard{contents: "user data"}
	inj := NewInjector(input, clip, automationConfig(), testLogger())

	err := inj.Send(chatWindow(1, "ChatGPT"), "hello")
	require.NoError(t, err)

	assert.Equal(t, "hello", input.typed.String())
	assert.Empty(t, clip.writes, "typing path must not touch the clipboard")
	assert.Equal(t, 1, input.tapped("a+ctrl"), "stale input should be selected before typing")
}

func TestSendPastesLongMessages(t *testing.T) {
	input := &fakeInput{}
	clip := &fakeClipboard{contents: "user data"}
	inj := NewInjector(input, clip, automationConfig(), testLogger())

	long := strings.Repeat("x", 21)
	err := inj.Send(chatWindow(1, "ChatGPT"), long)
	require.NoError(t, err)

	assert.Empty(t, input.typed.String())
	require.Len(t, clip.writes, 2)
	assert.Equal(t, long, clip.writes[0])
	assert.Equal(t, "user data", clip.writes[1], "original clipboard must be restored")
	assert.Equal(t, 1, input.tapped("v+ctrl"))
}

func TestSendThresholdBoundary(t *testing.T) {
	// A payload exactly at the threshold is typed; one past it is pasted.
	atThreshold := strings.Repeat("x", 20)
	pastThreshold := strings.Repeat("x", 21)

	input := &fakeInput{}
	clip := &fakeClipboard{}
	inj := NewInjector(input, clip, automationConfig(), testLogger())

	require.NoError(t, inj.Send(chatWindow(1, "ChatGPT"), atThreshold))
	assert.Equal(t, atThreshold, input.typed.String())
	assert.Empty(t, clip.writes)

	require.NoError(t, inj.Send(chatWindow(1, "ChatGPT"), pastThreshold))
	assert.Equal(t, atThreshold, input.typed.String(), "past-threshold payload must not be typed")
	assert.NotEmpty(t, clip.writes)
}

func TestSendTypesNewlinesAsSoftBreaks(t *testing.T) {
	input := &fakeInput{}
	inj := NewInjector(input, &fakeClipboard{}, automationConfig(), testLogger())

	err := inj.Send(chatWindow(1, "ChatGPT"), "line one\nline two")
	require.NoError(t, err)

	assert.Equal(t, "line oneline two", input.typed.String())
	assert.Equal(t, 1, input.tapped("enter+shift"))
	assert.Zero(t, input.tapped("enter"), "a bare enter would submit prematurely")
}

func TestSendTypesCRLFAsSingleSoftBreak(t *testing.T) {
	input := &fakeInput{}
	inj := NewInjector(input, &fakeClipboard{}, automationConfig(), testLogger())

	err := inj.Send(chatWindow(1, "ChatGPT"), "a\r\nb")
	require.NoError(t, err)

	assert.Equal(t, "ab", input.typed.String())
	assert.Equal(t, 1, input.tapped("enter+shift"), "a \\r\\n pair is one line break")

	// A lone carriage return still breaks the line.
	input2 := &fakeInput{}
	inj2 := NewInjector(input2, &fakeClipboard{}, automationConfig(), testLogger())
	require.NoError(t, inj2.Send(chatWindow(1, "ChatGPT"), "a\rb"))
	assert.Equal(t, "ab", input2.typed.String())
	assert.Equal(t, 1, input2.tapped("enter+shift"))
}

func TestSendClipboardRestoreFailureIsNotFatal(t *testing.T) {
	input := &fakeInput{}
	// Fail only the restore: the first write (the payload) succeeds.
	clip := &fakeClipboard{contents: "precious", failWritesAfter: 1}
	inj := NewInjector(input, clip, automationConfig(), testLogger())

	long := strings.Repeat("x", 30)
	err := inj.Send(chatWindow(1, "ChatGPT"), long)
	require.NoError(t, err, "the message is delivered even if restore fails")
	assert.Equal(t, 1, input.tapped("v+ctrl"))
}

func TestSendFailsOutsideWindowBounds(t *testing.T) {
	input := &fakeInput{}
	inj := NewInjector(input, &fakeClipboard{}, automationConfig(), testLogger())

	tiny := chatWindow(1, "ChatGPT")
	tiny.Bounds.Width = 0
	tiny.Bounds.Height = 0

	err := inj.Send(tiny, "hello")
	assert.Error(t, err)
	assert.Empty(t, input.clicks)
}

func TestPreview(t *testing.T) {
	inj := NewInjector(&fakeInput{}, &fakeClipboard{}, automationConfig(), testLogger())

	assert.Equal(t, "typing", inj.Preview("short"))
	assert.Equal(t, "typing (with soft line breaks)", inj.Preview("a\nb"))
	assert.Equal(t, "clipboard", inj.Preview(strings.Repeat("x", 21)))
}
