package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tareas/internal/client"
	"tareas/internal/models"

	"github.com/spf13/cobra"
)

var (
	errNotLoggedIn    = errors.New("not logged in, run `tareas login` first")
	errSessionExpired = errors.New("session expired, run `tareas login` again")
)

// app is the client state shared by one command invocation.
type app struct {
	cfg     *client.Config
	session *client.Session
	tokens  client.TokenStore
	api     *client.HTTPClient
	ctrl    *client.Controller
	out     io.Writer
}

// newApp loads the client config and builds a controller whose
// notifications go to nav and notify.
func newApp(cmd *cobra.Command, flags *rootFlags, nav client.Navigator, notify client.Notifier) (*app, error) {
	cfg, err := client.LoadConfig(flags.configDir)
	if err != nil {
		return nil, err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}

	session := client.NewSession()
	tokens := client.NewFileTokenStore(cfg.TokenPath())
	api := client.NewHTTPClient(cfg.APIURL, session, cfg.Timeout)

	return &app{
		cfg:     cfg,
		session: session,
		tokens:  tokens,
		api:     api,
		ctrl:    client.NewController(api, session, tokens, nav, notify),
		out:     cmd.OutOrStdout(),
	}, nil
}

func newCLIApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	return newApp(cmd, flags, noopNavigator{}, &stderrNotifier{w: cmd.ErrOrStderr()})
}

// restore loads the saved session and checks it with the server.
func (a *app) restore(ctx context.Context) error {
	if err := a.ctrl.Init(ctx); err != nil {
		if client.IsKind(err, client.KindUnauthenticated) {
			return errSessionExpired
		}
		return fmt.Errorf("failed to restore session: %v", err)
	}
	if !a.session.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

// authed restores the session and loads the task list.
func (a *app) authed(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	return a.ctrl.Refresh(ctx)
}

type stderrNotifier struct {
	w io.Writer
}

func (n *stderrNotifier) Success(msg string) {
	fmt.Fprintln(n.w, msg)
}

func (n *stderrNotifier) Error(msg string) {
	fmt.Fprintf(n.w, "error: %s\n", msg)
}

// noopNavigator ignores route changes; each CLI command is a single screen.
type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}

// ordered lists tasks the way `list` prints them: pending first.
func ordered(ctrl *client.Controller) []models.Task {
	return append(ctrl.Pending(), ctrl.Completed()...)
}

// resolveTask finds a task by its 1-based position in `list` output or by a
// unique prefix of its id.
func resolveTask(tasks []models.Task, ref string) (models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Task{}, errors.New("task reference is empty")
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tasks) {
			return models.Task{}, fmt.Errorf("no task number %d", n)
		}
		return tasks[n-1], nil
	}

	var matches []models.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID.String(), strings.ToLower(ref)) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Task{}, fmt.Errorf("%q matches %d tasks", ref, len(matches))
	}
}

func shortID(t models.Task) string {
	return t.ID.String()[:8]
}

func printTask(w io.Writer, n int, t models.Task) {
	check := "[ ]"
	if t.IsCompleted() {
		check = "[x]"
	}
	fmt.Fprintf(w, "%3d. %s %s  (%s)\n", n, check, t.Titulo, shortID(t))
	if t.Descripcion != nil && *t.Descripcion != "" {
		fmt.Fprintf(w, "          %s\n", *t.Descripcion)
	}
}
