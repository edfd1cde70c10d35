package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	var pendingOnly, completedOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your tasks, pending first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd, flags)
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}

			pending := a.ctrl.Pending()
			completed := a.ctrl.Completed()

			if !completedOnly {
				fmt.Fprintf(a.out, "Pendientes (%d)\n", len(pending))
				for i, t := range pending {
					printTask(a.out, i+1, t)
				}
			}
			if !pendingOnly {
				fmt.Fprintf(a.out, "Completadas (%d)\n", len(completed))
				for i, t := range completed {
					printTask(a.out, len(pending)+i+1, t)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "only show pending tasks")
	cmd.Flags().BoolVar(&completedOnly, "completed", false, "only show completed tasks")
	cmd.MarkFlagsMutuallyExclusive("pending", "completed")
	return cmd
}
