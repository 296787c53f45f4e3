package command

import (
	"context"
	"errors"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecoply-go/internal/cli/repl"
	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/navigation"
)

// ReplCommand returns the interactive shell command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:    "repl",
		Aliases: []string{"shell"},
		Usage:   "Start an interactive session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "history-file", Usage: "History file (default ~/.ecoply/history)"},
		},
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	if nested, _ := c.App.Metadata[nestedKey].(bool); nested {
		return domain.ErrInvalidArgument.WithDetails("already in an interactive session")
	}
	rt, err := runtimeFor(c)
	if err != nil {
		return err
	}
	if err := rt.WatchConfig(); err != nil {
		rt.Logger.Warn("config watch disabled", "path", rt.ConfigPath, "error", err)
	}

	path := c.String("history-file")
	if path == "" {
		path = repl.DefaultHistoryPath()
	}
	history := repl.NewHistory(path)
	if err := history.Load(); err != nil {
		rt.Logger.Warn("history not loaded", "path", history.File(), "error", err)
	}
	rt.OnShutdown("history", func(context.Context) error {
		return history.Save()
	})

	shell := repl.New(repl.Config{
		Input:  c.App.Reader,
		Output: c.App.Writer,
		Prompt: func() string {
			return "ecoply:" + rt.Router.Current().Path + "> "
		},
		Exec: func(ctx context.Context, args []string) error {
			line := newApp(rt)
			line.Reader = c.App.Reader
			line.Writer = c.App.Writer
			line.ErrWriter = c.App.ErrWriter
			err := line.RunContext(ctx, append([]string{c.App.Name}, args...))
			if err != nil && !errors.Is(err, context.Canceled) {
				PrintError(c.App.ErrWriter, err)
			}
			return nil
		},
		Commands:  commandPaths("", Commands()),
		Arguments: map[string][]string{"goto": routeTargets(rt.Router.Table())},
		History:   history,
	})
	return shell.Run(c.Context)
}

// commandPaths lists every command as a space-separated path, such as
// "offers list".
func commandPaths(prefix string, cmds []*cli.Command) []string {
	var out []string
	for _, cmd := range cmds {
		path := strings.TrimSpace(prefix + " " + cmd.Name)
		out = append(out, path)
		out = append(out, commandPaths(path, cmd.Subcommands)...)
	}
	return out
}

// routeTargets lists the route names and the paths that take no params.
func routeTargets(t *navigation.Table) []string {
	var out []string
	for _, r := range t.Routes() {
		out = append(out, r.Name)
		if !strings.Contains(r.Path, ":") {
			out = append(out, r.Path)
		}
	}
	return out
}
