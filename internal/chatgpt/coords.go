package chatgpt

import "github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"

// Coordinate estimation is deliberately heuristic: the ChatGPT desktop app
// exposes no readable element tree, so the input field and response area are
// taken as fixed offsets within the window rectangle. Known to be fragile
// against layout changes; kept as the reference behavior.

// inputFieldOffsets are distances from the bottom edge, tried in order.
var inputFieldOffsets = []int{100, 80, 120, 60}

// estimateInputField returns a click point for the message input field,
// assumed near the bottom-center of the window.
func estimateInputField(b platform.Bounds) (x, y int, ok bool) {
	x = b.X + b.Width/2
	for _, off := range inputFieldOffsets {
		y = b.Y + b.Height - off
		if b.Contains(x, y) {
			return x, y, true
		}
	}
	return 0, 0, false
}

// estimateResponseArea returns a click point inside the conversation area,
// assumed in the upper third of the window.
func estimateResponseArea(b platform.Bounds) (x, y int, ok bool) {
	x = b.X + b.Width/2
	y = b.Y + b.Height/3
	if !b.Contains(x, y) {
		return 0, 0, false
	}
	return x, y, true
}
