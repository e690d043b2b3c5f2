package main

import (
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/cmd"

	// Register the Windows platform backend.
	_ "github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform/windows"
)

func main() {
	cmd.Execute()
}
