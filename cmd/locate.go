package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/platform"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Find the ChatGPT window and print its details",
	RunE:  runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
	locateCmd.Flags().Bool("all", false, "List every window matching the detection heuristics")
	locateCmd.Flags().Bool("force-refresh", false, "Bypass the window cache")
}

// windowReport is the YAML shape printed for each located window.
type windowReport struct {
	Title   string `yaml:"title"`
	Handle  string `yaml:"handle"`
	State   string `yaml:"state"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Visible bool   `yaml:"visible"`
	PID     int    `yaml:"pid,omitempty"`
}

func reportFor(w platform.WindowInfo) windowReport {
	return windowReport{
		Title:   w.Title,
		Handle:  fmt.Sprintf("%#x", w.Handle),
		State:   w.State.String(),
		X:       w.Bounds.X,
		Y:       w.Bounds.Y,
		Width:   w.Bounds.Width,
		Height:  w.Bounds.Height,
		Visible: w.Visible,
		PID:     w.PID,
	}
}

func runLocate(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	forceRefresh, _ := cmd.Flags().GetBool("force-refresh")

	stack, err := newAutomationStack(cmd)
	if err != nil {
		return err
	}
	defer stack.Close()

	if all {
		windows, err := stack.coord.Locator().All()
		if err != nil {
			return cliError(err)
		}
		if len(windows) == 0 {
			fmt.Println("no matching windows")
			return nil
		}
		reports := make([]windowReport, len(windows))
		for i, w := range windows {
			reports[i] = reportFor(w)
		}
		b, err := yaml.Marshal(reports)
		if err != nil {
			return err
		}
		fmt.Print(string(b))
		return nil
	}

	win, err := stack.coord.Locator().Locate(forceRefresh)
	if err != nil {
		return cliError(err)
	}
	b, err := yaml.Marshal(reportFor(win))
	if err != nil {
		return err
	}
	fmt.Print(string(b))
	return nil
}
