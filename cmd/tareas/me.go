package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd, flags)
			if err != nil {
				return err
			}
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}
			user, _ := a.session.User()
			fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}
