package main

import (
	"fmt"

	"tareas/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive task view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := &tui.Status{}
			a, err := newApp(cmd, flags, status, status)
			if err != nil {
				return err
			}
			if err := a.restore(cmd.Context()); err != nil {
				return err
			}

			p := tea.NewProgram(tui.New(a.ctrl, status), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(tui.Model); ok && m.LoggedOut() {
				fmt.Fprintln(cmd.ErrOrStderr(), status.LastError())
			}
			return nil
		},
	}
}
