package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [text...]",
		Short: "Send one message to the assistant and apply its task changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			result, err := a.Chat.SendTurn(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Message)
			printActions(out, result.Actions)
			return nil
		},
	}
}

func printActions(w io.Writer, actions []domain.Action) {
	for _, action := range actions {
		switch action.Type {
		case domain.ToolAddTask:
			fmt.Fprintf(w, "  + %s (%s)\n", action.Title, action.DueLabel)
		case domain.ToolCompleteTask:
			if action.TaskID != nil {
				fmt.Fprintf(w, "  - task %d\n", *action.TaskID)
			}
		}
	}
}
