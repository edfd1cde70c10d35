package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd(flags *rootFlags) *cobra.Command {
	var descripcion string

	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Create a pending task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd, flags)
			if err != nil {
				return err
			}
			if err := a.authed(cmd.Context()); err != nil {
				return err
			}

			var desc *string
			if cmd.Flags().Changed("descripcion") {
				desc = &descripcion
			}
			return a.ctrl.CreateTask(cmd.Context(), strings.Join(args, " "), desc)
		},
	}

	cmd.Flags().StringVarP(&descripcion, "descripcion", "d", "", "task description")
	return cmd
}
