package chatgpt

import "strings"

// Roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a reconstructed conversation.
type Turn struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// userPrefixes classify a line as user speech when it starts with one of
// these. Matching is case-sensitive and prefix-based.
var userPrefixes = []string{"Can you", "Please", "How", "What", "Why", "When", "Where", "User:"}

// assistantPrefixes are explicit speaker labels stripped from the content.
var assistantPrefixes = []string{"Assistant:", "ChatGPT:"}

// ParseTurns reconstructs conversation turns from a raw window capture.
// There is no structural markup to rely on, only text: classification is
// by line-level heuristics (question marks and common openers for the
// user, speaker labels for the assistant) and is best-effort by contract.
// Unattributed lines continue the currently open turn; lines arriving
// before any turn has opened are dropped. At most maxTurns of the most
// recent turns are returned; maxTurns <= 0 means no limit.
func ParseTurns(raw string, maxTurns int) []Turn {
	var turns []Turn
	role := ""
	content := ""

	flush := func() {
		if content != "" {
			turns = append(turns, Turn{Role: role, Content: content})
		}
		content = ""
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case isUserLine(line):
			flush()
			role = RoleUser
			content = strings.TrimSpace(strings.TrimPrefix(line, "User:"))
		case hasAssistantPrefix(line):
			flush()
			role = RoleAssistant
			content = stripAssistantPrefix(line)
		case content != "":
			// Continuation of whichever turn is open. Lines before the
			// first classified turn have nothing to continue and are
			// dropped.
			content += "\n" + line
		}
	}
	flush()

	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	return turns
}

func isUserLine(line string) bool {
	if strings.HasSuffix(line, "?") {
		return true
	}
	for _, p := range userPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func hasAssistantPrefix(line string) bool {
	for _, p := range assistantPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func stripAssistantPrefix(line string) string {
	for _, p := range assistantPrefixes {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(strings.TrimPrefix(line, p))
		}
	}
	return line
}
