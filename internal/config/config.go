// Package config supplies the strongly typed configuration consumed by the
// automation core. Values resolve in priority order: built-in defaults,
// then an optional YAML file, then environment overrides (optionally loaded
// from a .env file next to the executable). Validate runs before any
// automation is attempted.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chaterr"
)

// envPrefix namespaces all environment overrides.
const envPrefix = "CHATGPT_MCP_"

// WindowDetection configures how the ChatGPT window is located and cached.
type WindowDetection struct {
	TitlePatterns      []string `yaml:"title_patterns"`
	CacheTimeout       Duration `yaml:"cache_timeout"`
	FocusRetryAttempts int      `yaml:"focus_retry_attempts"`
	FocusRetryDelay    Duration `yaml:"focus_retry_delay"`
	RestoreDelay       Duration `yaml:"restore_delay"`
	FocusSettleDelay   Duration `yaml:"focus_settle_delay"`
	MinWindowWidth     int      `yaml:"min_window_width"`
	MinWindowHeight    int      `yaml:"min_window_height"`
}

// Automation configures message delivery and response capture behavior.
type Automation struct {
	TypingDelay        Duration `yaml:"typing_delay"`
	ClipboardThreshold int      `yaml:"clipboard_threshold"`
	MaxMessageLength   int      `yaml:"max_message_length"`
	ResponseTimeout    Duration `yaml:"response_timeout"`
	PollInterval       Duration `yaml:"poll_interval"`
	MaxResponseLength  int      `yaml:"max_response_length"`
	MaxHistoryTurns    int      `yaml:"max_history_turns"`
	ResetSettleDelay   Duration `yaml:"reset_settle_delay"`
	ScreenshotOnError  bool     `yaml:"screenshot_on_error"`
	ScreenshotDir      string   `yaml:"screenshot_dir"`
}

// Server configures the MCP server surface.
type Server struct {
	Name           string   `yaml:"name"`
	MaxAttempts    int      `yaml:"max_attempts"`
	RequestTimeout Duration `yaml:"request_timeout"`
}

// Logging configures the rotating log file.
type Logging struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config is the root configuration document.
type Config struct {
	WindowDetection WindowDetection `yaml:"window_detection"`
	Automation      Automation      `yaml:"automation"`
	Server          Server          `yaml:"server"`
	Logging         Logging         `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		WindowDetection: WindowDetection{
			TitlePatterns: []string{
				"ChatGPT",
				"OpenAI ChatGPT",
				"ChatGPT - Google Chrome",
				"ChatGPT - Microsoft Edge",
				"ChatGPT - Mozilla Firefox",
			},
			CacheTimeout:       Duration(30 * time.Second),
			FocusRetryAttempts: 3,
			FocusRetryDelay:    Duration(time.Second),
			RestoreDelay:       Duration(200 * time.Millisecond),
			FocusSettleDelay:   Duration(100 * time.Millisecond),
			MinWindowWidth:     300,
			MinWindowHeight:    200,
		},
		Automation: Automation{
			TypingDelay:        Duration(50 * time.Millisecond),
			ClipboardThreshold: 500,
			MaxMessageLength:   2000,
			ResponseTimeout:    Duration(30 * time.Second),
			PollInterval:       Duration(time.Second),
			MaxResponseLength:  50000,
			MaxHistoryTurns:    10,
			ResetSettleDelay:   Duration(time.Second),
			ScreenshotOnError:  false,
			ScreenshotDir:      "diagnostics",
		},
		Server: Server{
			Name:           "windows-chatgpt-mcp",
			MaxAttempts:    2,
			RequestTimeout: Duration(120 * time.Second),
		},
		Logging: Logging{
			Level:      "info",
			File:       "",
			MaxSizeMB:  15,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load resolves the configuration. A non-empty path must exist; an empty
// path tries config.yaml in the working directory and next to the
// executable, silently skipping when absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolved, required := path, path != ""
	if resolved == "" {
		resolved = findDefaultFile()
	}
	if resolved != "" {
		data, err := os.ReadFile(resolved)
		if err != nil {
			if required {
				return nil, chaterr.Configuration(fmt.Sprintf("cannot read config file %s: %v", resolved, err))
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, chaterr.Configuration(fmt.Sprintf("cannot parse config file %s: %v", resolved, err))
		}
	}

	loadDotenv()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findDefaultFile() string {
	candidates := []string{"config.yaml"}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "config.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// loadDotenv pulls a .env from the executable directory into the process
// environment so overrides work for double-click launches too.
func loadDotenv() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	envPath := filepath.Join(filepath.Dir(exe), ".env")
	if _, err := os.Stat(envPath); err == nil {
		_ = godotenv.Load(envPath)
	}
}

// applyEnvOverrides overlays CHATGPT_MCP_* environment variables onto the
// config, field by field. Unparsable values are ignored in favor of the
// already-resolved value.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(envPrefix + "TITLE_PATTERNS"); v != "" {
		var patterns []string
		for _, p := range strings.Split(v, ",") {
			if t := strings.TrimSpace(p); t != "" {
				patterns = append(patterns, t)
			}
		}
		if len(patterns) > 0 {
			c.WindowDetection.TitlePatterns = patterns
		}
	}
	overrideDuration(envPrefix+"CACHE_TIMEOUT", &c.WindowDetection.CacheTimeout)
	overrideDuration(envPrefix+"RESPONSE_TIMEOUT", &c.Automation.ResponseTimeout)
	overrideDuration(envPrefix+"POLL_INTERVAL", &c.Automation.PollInterval)
	overrideDuration(envPrefix+"TYPING_DELAY", &c.Automation.TypingDelay)
	overrideInt(envPrefix+"CLIPBOARD_THRESHOLD", &c.Automation.ClipboardThreshold)
	overrideInt(envPrefix+"MAX_MESSAGE_LENGTH", &c.Automation.MaxMessageLength)
	overrideInt(envPrefix+"MAX_RESPONSE_LENGTH", &c.Automation.MaxResponseLength)
	overrideInt(envPrefix+"MAX_HISTORY_TURNS", &c.Automation.MaxHistoryTurns)
	overrideInt(envPrefix+"MAX_ATTEMPTS", &c.Server.MaxAttempts)
	if v := os.Getenv(envPrefix + "SCREENSHOT_ON_ERROR"); v != "" {
		c.Automation.ScreenshotOnError = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(envPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

func overrideDuration(key string, dst *Duration) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = Duration(d)
	}
}

func overrideInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*dst = n
	}
}

// Validate checks every field the core depends on. It returns a
// configuration-category error so startup fails fast.
func (c *Config) Validate() error {
	if len(c.WindowDetection.TitlePatterns) == 0 {
		return chaterr.Configuration("window_detection.title_patterns must not be empty")
	}
	for _, p := range c.WindowDetection.TitlePatterns {
		if strings.TrimSpace(p) == "" {
			return chaterr.Configuration("window_detection.title_patterns must not contain blank entries")
		}
	}
	if c.WindowDetection.CacheTimeout < 0 {
		return chaterr.Configuration("window_detection.cache_timeout must not be negative")
	}
	if c.WindowDetection.FocusRetryAttempts < 1 {
		return chaterr.Configuration("window_detection.focus_retry_attempts must be at least 1")
	}
	if c.WindowDetection.MinWindowWidth <= 0 || c.WindowDetection.MinWindowHeight <= 0 {
		return chaterr.Configuration("window_detection minimum window size must be positive")
	}
	if c.Automation.ResponseTimeout <= 0 {
		return chaterr.Configuration("automation.response_timeout must be positive")
	}
	if c.Automation.PollInterval <= 0 {
		return chaterr.Configuration("automation.poll_interval must be positive")
	}
	if c.Automation.ClipboardThreshold <= 0 {
		return chaterr.Configuration("automation.clipboard_threshold must be positive")
	}
	if c.Automation.MaxMessageLength <= 0 {
		return chaterr.Configuration("automation.max_message_length must be positive")
	}
	if c.Automation.MaxResponseLength <= 0 {
		return chaterr.Configuration("automation.max_response_length must be positive")
	}
	if c.Automation.MaxHistoryTurns <= 0 {
		return chaterr.Configuration("automation.max_history_turns must be positive")
	}
	if c.Server.MaxAttempts < 1 {
		return chaterr.Configuration("server.max_attempts must be at least 1")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return chaterr.Configuration(fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	return nil
}
