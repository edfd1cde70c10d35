package main

import (
	"github.com/spf13/cobra"
)

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd, flags)
			if err != nil {
				return err
			}
			a.ctrl.Logout()
			return nil
		},
	}
}
