package main

import (
	"errors"
	"fmt"

	"tareas/internal/client"
	"tareas/internal/models"

	"github.com/spf13/cobra"
)

func newEditCmd(flags *rootFlags) *cobra.Command {
	var (
		titulo, descripcion, estado string
		clearDescripcion            bool
	)

	cmd := &cobra.Command{
		Use:   "edit TASK",
		Short: "Change a task's title, description or status",
		Long: `Change a task. TASK is its number in "tareas list" or a prefix of its id.
Only the flags given are sent; everything else is left as it is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update client.TaskUpdate
			if cmd.Flags().Changed("titulo") {
				update.Titulo = &titulo
			}
			if cmd.Flags().Changed("descripcion") {
				update.Descripcion = &descripcion
			}
			update.ClearDescripcion = clearDescripcion
			if cmd.Flags().Changed("estado") {
				status := models.TaskStatus(estado)
				if !status.Valid() {
					return fmt.Errorf("estado must be %q or %q", models.StatusPending, models.StatusCompleted)
				}
				update.Estado = &status
			}
			if update.Titulo == nil && update.Descripcion == nil && update.Estado == nil && !update.ClearDescripcion {
				return errors.New("nothing to change, pass --titulo, --descripcion, --clear-descripcion or --estado")
			}

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
			return a.ctrl.UpdateTask(cmd.Context(), task.ID, update)
		},
	}

	cmd.Flags().StringVarP(&titulo, "titulo", "t", "", "new title")
	cmd.Flags().StringVarP(&descripcion, "descripcion", "d", "", "new description")
	cmd.Flags().BoolVar(&clearDescripcion, "clear-descripcion", false, "remove the description")
	cmd.Flags().StringVarP(&estado, "estado", "s", "", "pendiente or completada")
	cmd.MarkFlagsMutuallyExclusive("descripcion", "clear-descripcion")
	return cmd
}
