package cmd

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing the ChatGPT automation tools",
	Long: `Start a Model Context Protocol (MCP) server exposing send_message,
get_conversation_history, reset_conversation and get_debug_info as tools.

Supported transports:
  stdio             Standard I/O (default, for Claude Code / MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  windows-chatgpt-mcp serve
  windows-chatgpt-mcp serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	stack, err := newAutomationStack(cmd)
	if err != nil {
		return err
	}
	defer stack.Close()

	stack.log.Info("starting mcp server",
		"transport", transport, "name", stack.cfg.Server.Name)

	srv := newMCPServer(stack)
	return srv.serve(MCPConfig{Transport: transport, Port: port})
}
