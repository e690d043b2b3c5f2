package chatgpt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTurnsWellFormedConversation(t *testing.T) {
	raw := "User: Hello\nAssistant: Hi there!\nUser: How are you?\nAssistant: I'm doing well!"

	turns := ParseTurns(raw, 10)
	require.Equal(t, []Turn{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi there!"},
		{Role: RoleUser, Content: "How are you?"},
		{Role: RoleAssistant, Content: "I'm doing well!"},
	}, turns)
}

func TestParseTurnsMaxTurnsKeepsMostRecent(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("User: question %d", i))
		lines = append(lines, fmt.Sprintf("Assistant: answer %d", i))
	}
	raw := strings.Join(lines, "\n")

	full := ParseTurns(raw, 0)
	require.Len(t, full, 20)

	trimmed := ParseTurns(raw, 5)
	require.Len(t, trimmed, 5)
	assert.Equal(t, full[15:], trimmed, "the sliding window keeps the latest turns")
	assert.Equal(t, "answer 10", trimmed[4].Content)
}

func TestParseTurnsHeuristics(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Turn
	}{
		{
			name: "question mark classifies as user",
			raw:  "Is Go garbage collected?",
			want: []Turn{{Role: RoleUser, Content: "Is Go garbage collected?"}},
		},
		{
			name: "user opener without question mark",
			raw:  "Please summarize this file",
			want: []Turn{{Role: RoleUser, Content: "Please summarize this file"}},
		},
		{
			name: "chatgpt label strips prefix",
			raw:  "ChatGPT: Yes, it is.",
			want: []Turn{{Role: RoleAssistant, Content: "Yes, it is."}},
		},
		{
			name: "unlabeled leading lines are dropped",
			raw:  "The build passed on all platforms.",
			want: nil,
		},
		{
			name: "leading prose before the first turn does not open one",
			raw:  "unlabeled opening prose\nUser: hi there?",
			want: []Turn{{Role: RoleUser, Content: "hi there?"}},
		},
		{
			name: "continuation lines join the open turn",
			raw:  "Assistant: First paragraph.\nSecond paragraph.\nThird paragraph.",
			want: []Turn{{Role: RoleAssistant, Content: "First paragraph.\nSecond paragraph.\nThird paragraph."}},
		},
		{
			name: "new speaker flushes the open turn",
			raw:  "Assistant: Done.\nWhat changed?",
			want: []Turn{
				{Role: RoleAssistant, Content: "Done."},
				{Role: RoleUser, Content: "What changed?"},
			},
		},
		{
			name: "blank lines are skipped, not flushed",
			raw:  "Assistant: Part one.\n\n\nPart two.",
			want: []Turn{{Role: RoleAssistant, Content: "Part one.\nPart two."}},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			raw:  "  \n\t\n  ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTurns(tt.raw, 10))
		})
	}
}

func TestParseTurnsZeroMaxIsUnlimited(t *testing.T) {
	raw := "User: a?\nAssistant: b\nUser: c?\nAssistant: d"
	assert.Len(t, ParseTurns(raw, 0), 4)
	assert.Len(t, ParseTurns(raw, -1), 4)
}
