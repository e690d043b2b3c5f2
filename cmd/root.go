package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chatgpt"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/config"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/logging"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"
	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "windows-chatgpt-mcp",
	Short: "Automate the ChatGPT desktop app on Windows",
	Long: `Bridge AI agents to the ChatGPT desktop application via UI automation.
Messages are delivered through keystrokes or clipboard paste, responses are
captured by polling the window, and everything is exposed both as MCP tools
(see "serve") and as direct subcommands.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (default: config.yaml next to the executable)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log level: debug, info, warn, error")
}

// loadConfig resolves configuration from the --config flag, default file
// locations and environment overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

// automationStack is everything a command needs to run against the window.
type automationStack struct {
	cfg      *config.Config
	log      *slog.Logger
	coord    *chatgpt.Coordinator
	closeLog func() error
}

// newAutomationStack wires config, logging, the platform provider and the
// coordinator for one command invocation.
func newAutomationStack(cmd *cobra.Command) (*automationStack, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, closeLog := logging.New(cfg.Logging)

	provider, err := platform.NewProvider()
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	return &automationStack{
		cfg:      cfg,
		log:      log,
		coord:    chatgpt.New(*provider, cfg, log),
		closeLog: closeLog,
	}, nil
}

func (s *automationStack) Close() {
	if err := s.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "closing log writer: %v\n", err)
	}
}
