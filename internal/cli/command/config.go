package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecoply-go/internal/app"
	"github.com/yndnr/ecoply-go/internal/cli/config"
	"github.com/yndnr/ecoply-go/internal/core/domain"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration file path",
				Action: configPath,
			},
			{
				Name:   "sources",
				Usage:  "List the layers that set configuration values",
				Action: configSources,
			},
			{
				Name:   "validate",
				Usage:  "Check the configuration without contacting the server",
				Action: configValidate,
			},
			{
				Name:  "init",
				Usage: "Write the effective configuration to the configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing file"},
				},
				Action: configInit,
			},
		},
	}
}

// resolvedConfigPath returns the file the runtime reads its configuration from.
func resolvedConfigPath(c *cli.Context) string {
	if rt, ok := c.App.Metadata[runtimeKey].(*app.App); ok {
		return rt.ConfigPath
	}
	if p := runtimeOptions(c).ConfigPath; p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

// loadConfig resolves the configuration without opening the credential store.
func loadConfig(c *cli.Context) (*config.CLIConfig, error) {
	opts := runtimeOptions(c)
	return config.Load(config.LoadOptions{
		Path:      resolvedConfigPath(c),
		EnvFile:   opts.EnvFile,
		Overrides: opts.Overrides,
	})
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return render(c, cfg)
}

type sourceRow struct {
	Layer  string `json:"layer"`
	Origin string `json:"origin"`
	Keys   int    `json:"keys"`
}

func configSources(c *cli.Context) error {
	opts := runtimeOptions(c)
	_, sources, err := config.Inspect(config.LoadOptions{
		Path:      resolvedConfigPath(c),
		EnvFile:   opts.EnvFile,
		Overrides: opts.Overrides,
	})
	if err != nil {
		return err
	}
	rows := make([]sourceRow, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, sourceRow{Layer: s.Layer, Origin: s.Origin, Keys: s.Keys})
	}
	return render(c, rows)
}

func configPath(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, resolvedConfigPath(c))
	return nil
}

func configValidate(c *cli.Context) error {
	if _, err := loadConfig(c); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Configuration is valid: %s\n", resolvedConfigPath(c))
	return nil
}

func configInit(c *cli.Context) error {
	path := resolvedConfigPath(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return domain.ErrInvalidArgument.WithDetails(path + " already exists, use --force to overwrite")
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}
