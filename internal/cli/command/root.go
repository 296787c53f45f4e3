// Package command provides CLI command definitions for ecoply-cli.
//
// It uses urfave/cli/v2 for command parsing and supports both
// single-command mode and interactive REPL mode. Commands that talk to
// the marketplace first navigate to the screen they belong to, so the
// auth guard decides whether they may run.
package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecoply-go/internal/app"
	"github.com/yndnr/ecoply-go/internal/cli/output"
	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/infra/buildinfo"
	"github.com/yndnr/ecoply-go/internal/transport"
)

const (
	runtimeKey = "runtime"
	ownedKey   = "runtime.owned"
	optionsKey = "runtime.options"
	nestedKey  = "repl.nested"
)

// App creates the CLI application.
func App() *cli.App {
	return newApp(nil)
}

// newApp builds the command tree. A non-nil rt is shared instead of
// being created on first use, which is how REPL lines run.
func newApp(rt *app.App) *cli.App {
	a := &cli.App{
		Name:                 "ecoply-cli",
		Usage:                "Ecoply energy marketplace client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             Commands(),
		EnableBashCompletion: true,
		Metadata:             map[string]any{},
		After:                teardown,
	}
	if rt != nil {
		a.Metadata[runtimeKey] = rt
		a.Metadata[nestedKey] = true
		a.ExitErrHandler = func(*cli.Context, error) {}
	}
	return a
}

// Commands returns every top-level command.
func Commands() []*cli.Command {
	return []*cli.Command{
		LoginCommand(),
		RegisterCommand(),
		LogoutCommand(),
		WhoamiCommand(),
		StatusCommand(),
		OffersCommand(),
		PurchasesCommand(),
		GotoCommand(),
		RoutesCommand(),
		ConfigCommand(),
		VersionCommand(),
		ReplCommand(),
	}
}

// globalFlags returns the global CLI flags. Flags that mirror config keys
// have no default so an unset flag never shadows the file or ECOPLY_*.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.ecoply/cli.yaml)",
			EnvVars: []string{"ECOPLY_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Dotenv file merged into the environment (default ./.env when present)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Marketplace API origin (e.g., https://api.ecoply.com.br)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:  "credential-backend",
			Usage: "Token storage: file, badger, memory",
		},
		&cli.StringFlag{
			Name:  "credential-path",
			Usage: "Token file or database directory",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// flagKeys maps global flags onto configuration keys.
var flagKeys = map[string]string{
	"server":             "server",
	"output":             "output",
	"credential-backend": "credential.backend",
	"credential-path":    "credential.path",
	"log-level":          "log.level",
}

// overrides collects the global flags the user actually set.
func overrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			out[key] = c.String(flag)
		}
	}
	if c.Bool("verbose") {
		out["log.level"] = "debug"
	}
	return out
}

// runtimeOptions returns the options the runtime is built with. Tests
// preset them through Metadata.
func runtimeOptions(c *cli.Context) app.Options {
	opts, _ := c.App.Metadata[optionsKey].(app.Options)
	if opts.ConfigPath == "" {
		opts.ConfigPath = c.String("config")
	}
	if opts.EnvFile == "" {
		opts.EnvFile = c.String("env-file")
	}
	merged := make(map[string]any, len(opts.Overrides))
	for k, v := range opts.Overrides {
		merged[k] = v
	}
	for k, v := range overrides(c) {
		merged[k] = v
	}
	opts.Overrides = merged
	if opts.LogOutput == nil {
		opts.LogOutput = c.App.ErrWriter
	}
	return opts
}

// runtimeFor returns the shared runtime, creating it on first use.
func runtimeFor(c *cli.Context) (*app.App, error) {
	if rt, ok := c.App.Metadata[runtimeKey].(*app.App); ok {
		return rt, nil
	}
	rt, err := app.New(runtimeOptions(c))
	if err != nil {
		return nil, err
	}
	c.App.Metadata[runtimeKey] = rt
	c.App.Metadata[ownedKey] = true
	return rt, nil
}

// teardown closes a runtime created by this invocation.
func teardown(c *cli.Context) error {
	if owned, _ := c.App.Metadata[ownedKey].(bool); !owned {
		return nil
	}
	rt, ok := c.App.Metadata[runtimeKey].(*app.App)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, runtimeKey)
	delete(c.App.Metadata, ownedKey)
	return rt.Close()
}

// enter obtains the runtime and navigates to the command's route.
func enter(c *cli.Context, route string, params map[string]string) (*app.App, error) {
	rt, err := runtimeFor(c)
	if err != nil {
		return nil, err
	}
	if err := rt.Enter(route, params); err != nil {
		return nil, err
	}
	return rt, nil
}

// outputFormat resolves the output flag, falling back to the configured format.
func outputFormat(c *cli.Context) (output.Format, error) {
	format := c.String("output")
	if format == "" {
		if rt, ok := c.App.Metadata[runtimeKey].(*app.App); ok {
			format = rt.Config.Output
		}
	}
	return output.ParseFormat(format)
}

// render prints data in the selected format.
func render(c *cli.Context, data any) error {
	f, err := outputFormat(c)
	if err != nil {
		return err
	}
	return output.NewFormatter(f, c.Bool("wide")).Format(c.App.Writer, data)
}

// tableOutput reports whether human-oriented extras should be printed.
func tableOutput(c *cli.Context) bool {
	f, err := outputFormat(c)
	return err == nil && f == output.FormatTable
}

// PrintError writes err to w with a hint for the errors users can act on.
func PrintError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "error: %v\n", err)

	var apiErr *transport.APIError
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		fmt.Fprintln(w, "hint: check the email and password")
	case errors.Is(err, domain.ErrSessionExpired):
		fmt.Fprintln(w, "hint: your session has ended, run 'ecoply-cli login' again")
	case errors.Is(err, domain.ErrNavigationBlocked):
		fmt.Fprintln(w, "hint: check 'ecoply-cli status'; if a stale session blocks login, run 'ecoply-cli logout' first")
	case errors.Is(err, domain.ErrCredentialSealed):
		fmt.Fprintln(w, "hint: set ECOPLY_CREDENTIAL_PASSPHRASE to the passphrase used at login")
	case errors.As(err, &apiErr) && apiErr.StatusCode == 404:
		fmt.Fprintln(w, "hint: the resource does not exist or is not visible to this account")
	}
}
