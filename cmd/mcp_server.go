package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chaterr"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chatgpt"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/config"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/retry"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/version"
)

// mcpServer exposes the coordinator's operations as MCP tools. A single
// mutex serializes all tool calls: there is one desktop, one window and one
// clipboard, so concurrent automation would interleave keystrokes.
type mcpServer struct {
	coord  *chatgpt.Coordinator
	runner retry.Runner
	cfg    *config.Config
	log    *slog.Logger
	opMu   sync.Mutex
	mcp    *mcpserver.MCPServer
}

// MCPConfig holds serve-command settings.
type MCPConfig struct {
	Transport string
	Port      int
}

// newMCPServer wires the MCP server around an automation stack.
func newMCPServer(stack *automationStack) *mcpServer {
	policy := retry.DefaultPolicy()
	if stack.cfg.Server.MaxAttempts > 0 {
		policy.MaxAttempts = stack.cfg.Server.MaxAttempts
	}

	s := &mcpServer{
		coord:  stack.coord,
		runner: retry.Runner{Policy: policy, Log: stack.log},
		cfg:    stack.cfg,
		log:    stack.log,
	}

	s.mcp = mcpserver.NewMCPServer(
		stack.cfg.Server.Name,
		version.Version,
	)

	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("send_message",
			mcp.WithDescription("Send a message to the ChatGPT desktop app and wait for the response"),
			mcp.WithString("message", mcp.Description("Message text to send"), mcp.Required()),
			mcp.WithNumber("timeout", mcp.Description("Seconds to wait for the response (default: configured response timeout)")),
		),
		s.handleSendMessage,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_conversation_history",
			mcp.WithDescription("Extract recent conversation turns from the ChatGPT window"),
			mcp.WithNumber("max_turns", mcp.Description("Maximum number of turns to return (default: configured limit)")),
		),
		s.handleGetHistory,
	)

	s.mcp.AddTool(
		mcp.NewTool("reset_conversation",
			mcp.WithDescription("Start a new conversation in the ChatGPT window"),
		),
		s.handleReset,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_debug_info",
			mcp.WithDescription("Report server version, window state, effective settings and operation metrics"),
			mcp.WithBoolean("include_metrics", mcp.Description("Include per-operation counters (default: true)")),
			mcp.WithBoolean("include_logs", mcp.Description("Include the tail of the log file, when file logging is enabled")),
		),
		s.handleDebugInfo,
	)
}

// sendResult is the envelope for a successful send_message call.
type sendResult struct {
	Response string `yaml:"response"`
	Elapsed  string `yaml:"elapsed"`
}

func (s *mcpServer) handleSendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	message := stringParam(params, "message", "")
	timeout := time.Duration(floatParam(params, "timeout", 0) * float64(time.Second))

	s.opMu.Lock()
	defer s.opMu.Unlock()

	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	start := time.Now()
	var response string
	err := s.runner.Do(ctx, "send_message", func(ctx context.Context) error {
		var err error
		response, err = s.coord.SendAndAwait(ctx, message, timeout)
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}

	return yamlResult(sendResult{
		Response: response,
		Elapsed:  time.Since(start).Round(time.Millisecond).String(),
	}), nil
}

// historyResult is the envelope for get_conversation_history.
type historyResult struct {
	Turns []chatgpt.Turn `yaml:"turns"`
	Count int            `yaml:"count"`
}

func (s *mcpServer) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	maxTurns := intParam(params, "max_turns", 0)

	s.opMu.Lock()
	defer s.opMu.Unlock()

	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	var turns []chatgpt.Turn
	err := s.runner.Do(ctx, "get_conversation_history", func(ctx context.Context) error {
		var err error
		turns, err = s.coord.History(ctx, maxTurns)
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}

	return yamlResult(historyResult{Turns: turns, Count: len(turns)}), nil
}

func (s *mcpServer) handleReset(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	err := s.runner.Do(ctx, "reset_conversation", func(ctx context.Context) error {
		return s.coord.Reset(ctx)
	})
	if err != nil {
		return errorResult(err), nil
	}

	return yamlResult(map[string]string{"status": "conversation reset"}), nil
}

// debugResult augments the coordinator's snapshot with an optional log tail.
type debugResult struct {
	chatgpt.DebugInfo `yaml:",inline"`
	LogFile           string   `yaml:"log_file,omitempty"`
	RecentLogs        []string `yaml:"recent_logs,omitempty"`
}

func (s *mcpServer) handleDebugInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	includeMetrics := boolParam(params, "include_metrics", true)
	includeLogs := boolParam(params, "include_logs", false)

	s.opMu.Lock()
	defer s.opMu.Unlock()

	result := debugResult{DebugInfo: s.coord.DebugInfo(ctx)}
	if !includeMetrics {
		result.Metrics = chatgpt.Snapshot{}
	}
	if includeLogs && s.cfg.Logging.File != "" {
		result.LogFile = s.cfg.Logging.File
		result.RecentLogs = tailLines(s.cfg.Logging.File, logTailLines)
	}
	return yamlResult(result), nil
}

// logTailLines caps how much of the log file get_debug_info returns.
const logTailLines = 50

// tailLines returns up to n trailing lines of the file, best-effort.
func tailLines(path string, n int) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("cannot read log file: %v", err)}
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// requestContext bounds a tool call with the configured request timeout.
func (s *mcpServer) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	budget := s.cfg.Server.RequestTimeout.Std()
	if budget <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, budget)
}

// errorEnvelope is the structured error shape returned to MCP clients.
type errorEnvelope struct {
	Category    string         `yaml:"category"`
	Recoverable bool           `yaml:"recoverable"`
	UserMessage string         `yaml:"user_message"`
	Details     map[string]any `yaml:"details,omitempty"`
}

func errorResult(err error) *mcp.CallToolResult {
	env := errorEnvelope{
		Category:    string(chaterr.CategoryOf(err)),
		Recoverable: chaterr.IsRecoverable(err),
		UserMessage: chaterr.UserMessageOf(err),
	}
	if ce := chaterr.As(err); ce != nil {
		env.Details = ce.Details
	}
	b, merr := yaml.Marshal(env)
	if merr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(b))
}

func yamlResult(v any) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("serializing result: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}
