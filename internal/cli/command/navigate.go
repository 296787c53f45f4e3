package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/navigation"
)

// GotoCommand returns the goto command.
func GotoCommand() *cli.Command {
	return &cli.Command{
		Name:      "goto",
		Aliases:   []string{"cd"},
		Usage:     "Navigate to a route by path or by name",
		ArgsUsage: "PATH | NAME [key=value ...]",
		Description: `Examples:
  ecoply-cli goto /offer/42
  ecoply-cli goto offer-detail id=42`,
		Action: gotoAction,
	}
}

func gotoAction(c *cli.Context) error {
	target := c.Args().First()
	if target == "" {
		return domain.ErrMissingArgument.WithDetails("PATH or NAME")
	}
	rt, err := runtimeFor(c)
	if err != nil {
		return err
	}

	var loc navigation.Location
	if strings.HasPrefix(target, "/") {
		loc, err = rt.Router.Navigate(target)
	} else {
		params, perr := routeParams(c.Args().Tail())
		if perr != nil {
			return perr
		}
		loc, err = rt.Router.Push(target, params)
	}
	if err != nil {
		return err
	}

	if loc.Path != target && loc.Name() != target {
		fmt.Fprintf(c.App.Writer, "Redirected to %s (%s)\n", loc.Path, loc.Name())
		return nil
	}
	fmt.Fprintf(c.App.Writer, "%s (%s)\n", loc.Path, loc.Name())
	return nil
}

func routeParams(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, domain.ErrInvalidArgument.WithDetails("route param must be key=value: " + arg)
		}
		params[k] = v
	}
	return params, nil
}

// routeRow is one line of the routes listing.
type routeRow struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Parent  string `json:"parent,omitempty"`
	Auth    bool   `json:"requires_auth"`
	Title   string `json:"title" table:"wide"`
	Current bool   `json:"current"`
}

// RoutesCommand returns the routes command.
func RoutesCommand() *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "List the navigable routes",
		Action: func(c *cli.Context) error {
			rt, err := runtimeFor(c)
			if err != nil {
				return err
			}
			current := rt.Router.Current().Name()
			var rows []routeRow
			table := rt.Router.Table()
			for _, r := range table.Routes() {
				rows = append(rows, routeRow{
					Name:    r.Name,
					Path:    r.Path,
					Parent:  r.Parent,
					Auth:    table.RequiresAuth(r.Name),
					Title:   r.Meta.Title,
					Current: r.Name == current,
				})
			}
			return render(c, rows)
		},
	}
}
