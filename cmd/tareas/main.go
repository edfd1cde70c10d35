// Command tareas is the terminal client for the tareas API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tareas/internal/client"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		// API errors were already reported by the notifier.
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

type rootFlags struct {
	configDir string
	apiURL    string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "tareas",
		Short:         "Manage your tareas from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "config directory (default $XDG_CONFIG_HOME/tareas)")
	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "API base URL (overrides config and TAREAS_API_URL)")

	root.AddCommand(
		newLoginCmd(flags),
		newRegisterCmd(flags),
		newLogoutCmd(flags),
		newMeCmd(flags),
		newListCmd(flags),
		newAddCmd(flags),
		newEditCmd(flags),
		newDoneCmd(flags),
		newRmCmd(flags),
		newUICmd(flags),
	)
	return root
}
