package main

import (
	"github.com/spf13/cobra"
)

func newRmCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm TASK",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd, flags)
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}
			task, err := resolveTask(ordered(a.ctrl), args[0])
			if err != nil {
				return err
			}
			return a.ctrl.DeleteTask(cmd.Context(), task.ID)
		},
	}
}
