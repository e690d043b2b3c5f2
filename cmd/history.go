package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recent conversation turns from the ChatGPT window",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("max-turns", 0, "Maximum turns to print (0 = configured default)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	maxTurns, _ := cmd.Flags().GetInt("max-turns")

	stack, err := newAutomationStack(cmd)
	if err != nil {
		return err
	}
	defer stack.Close()

	turns, err := stack.coord.History(cmd.Context(), maxTurns)
	if err != nil {
		return cliError(err)
	}
	if len(turns) == 0 {
		fmt.Println("no conversation found")
		return nil
	}

	b, err := yaml.Marshal(turns)
	if err != nil {
		return err
	}
	fmt.Print(string(b))
	return nil
}
