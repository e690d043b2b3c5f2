package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a new conversation in the ChatGPT window",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	stack, err := newAutomationStack(cmd)
	if err != nil {
		return err
	}
	defer stack.Close()

	if err := stack.coord.Reset(cmd.Context()); err != nil {
		return cliError(err)
	}
	fmt.Println("conversation reset")
	return nil
}
