package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the conversation transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			clearAll, _ := cmd.Flags().GetBool("clear")
			if clearAll {
				return a.Chat.ClearMessages(cmd.Context())
			}

			messages, err := a.Chat.ListMessages(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range messages {
				fmt.Fprintf(out, "%s: %s\n", strings.ToUpper(m.Role), m.Text)
			}
			return nil
		},
	}

	cmd.Flags().Bool("clear", false, "Clear the transcript instead of printing it")
	return cmd
}
