package main

import (
	"github.com/spf13/cobra"
)

func newDoneCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "done TASK",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
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
			return a.ctrl.CompleteTask(cmd.Context(), task.ID)
		},
	}
}
