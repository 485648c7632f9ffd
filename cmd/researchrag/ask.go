package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <paper-id> <question...>",
		Short: "Ask a question about a submitted paper",
		Long: `Ask sends one question to the paper's conversation and prints the answer.
Remaining arguments are joined with spaces, so quoting the question is optional.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args[1:], " ")
			reply, err := a.chats().Ask(cmd.Context(), args[0], question)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return nil
		},
	}
}
