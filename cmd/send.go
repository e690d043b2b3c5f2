package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chaterr"
)

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send a message to the ChatGPT window and print the response",
	Long: `Send a message to the ChatGPT desktop app and wait for the reply.

Examples:
  windows-chatgpt-mcp send "Summarize the attached notes"
  windows-chatgpt-mcp send --timeout 60 "Write a long essay"
  windows-chatgpt-mcp send --dry-run "Would this be typed or pasted?"`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().Int("timeout", 0, "Seconds to wait for the response (0 = configured default)")
	sendCmd.Flags().Bool("dry-run", false, "Report the delivery path without touching the window")
}

func runSend(cmd *cobra.Command, args []string) error {
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	message := args[0]

	stack, err := newAutomationStack(cmd)
	if err != nil {
		return err
	}
	defer stack.Close()

	if dryRun {
		fmt.Printf("delivery: %s (%d chars)\n", stack.coord.Preview(message), len(message))
		return nil
	}

	response, err := stack.coord.SendAndAwait(cmd.Context(),
		message, time.Duration(timeoutSec)*time.Second)
	if err != nil {
		return cliError(err)
	}

	fmt.Println(response)
	return nil
}

// cliError converts a categorized error into a message fit for terminal
// users; the technical detail is already in the log.
func cliError(err error) error {
	if ce := chaterr.As(err); ce != nil {
		return fmt.Errorf("%s", ce.UserMessage)
	}
	return err
}
