//go:build windows

package windows

import "github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		clip, err := NewClipboard()
		if err != nil {
			return nil, err
		}
		return &platform.Provider{
			Windows:   NewWindowAPI(),
			Input:     NewInputter(),
			Clipboard: clip,
		}, nil
	}
}
