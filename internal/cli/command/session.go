package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/navigation"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and store the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "Account email",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password",
				EnvVars: []string{"ECOPLY_PASSWORD"},
			},
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	rt, err := enter(c, navigation.RouteLogin, nil)
	if err != nil {
		return err
	}

	creds := domain.Credentials{
		Email:    strings.TrimSpace(c.String("email")),
		Password: c.String("password"),
	}
	if creds.Password == "" {
		return domain.ErrMissingArgument.WithDetails("password (use --password or ECOPLY_PASSWORD)")
	}

	p, err := rt.Session.Login(c.Context, creds)
	if err != nil {
		return err
	}
	if _, err := rt.Router.Push(navigation.RouteDashboard, nil); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Logged in as %s (%s)\n", p.Name, p.Role)
	return nil
}

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and log in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Full name", Required: true},
			&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
			&cli.StringFlag{Name: "password", Usage: "Account password", EnvVars: []string{"ECOPLY_PASSWORD"}},
			&cli.StringFlag{Name: "confirm-password", Usage: "Password confirmation (defaults to --password)"},
			&cli.StringFlag{Name: "user-type", Usage: "buyer or supplier", Required: true},

			&cli.StringFlag{Name: "cep", Usage: "Postal code", Category: "Address"},
			&cli.StringFlag{Name: "state-initials", Usage: "State initials (e.g., SP)", Category: "Address"},
			&cli.StringFlag{Name: "state", Usage: "State", Category: "Address"},
			&cli.StringFlag{Name: "city", Usage: "City", Category: "Address"},
			&cli.StringFlag{Name: "neighborhood", Usage: "Neighborhood", Category: "Address"},
			&cli.StringFlag{Name: "street", Usage: "Street", Category: "Address"},
			&cli.StringFlag{Name: "number", Usage: "Street number", Category: "Address"},
			&cli.StringFlag{Name: "complement", Usage: "Address complement", Category: "Address"},

			&cli.StringFlag{Name: "cnpj", Usage: "Company CNPJ", Category: "Agent"},
			&cli.StringFlag{Name: "ccee-code", Usage: "CCEE agent code", Category: "Agent"},
			&cli.StringFlag{Name: "submarket", Usage: "Submarket name", Category: "Agent"},
			&cli.StringFlag{Name: "company-name", Usage: "Company name", Category: "Agent"},
		},
		Action: register,
	}
}

func registration(c *cli.Context) domain.Registration {
	confirm := c.String("confirm-password")
	if !c.IsSet("confirm-password") {
		confirm = c.String("password")
	}

	reg := domain.Registration{
		Name:            c.String("name"),
		Email:           strings.TrimSpace(c.String("email")),
		Password:        c.String("password"),
		ConfirmPassword: confirm,
		Role:            domain.Role(strings.ToLower(c.String("user-type"))),
		Address: domain.RegistrationAddress{
			CEP:           c.String("cep"),
			StateInitials: c.String("state-initials"),
			State:         c.String("state"),
			City:          c.String("city"),
			Neighborhood:  c.String("neighborhood"),
			Street:        c.String("street"),
			Number:        c.String("number"),
			Complement:    c.String("complement"),
		},
		Agent: domain.RegistrationAgent{
			CNPJ:        c.String("cnpj"),
			CCEECode:    c.String("ccee-code"),
			CompanyName: c.String("company-name"),
		},
	}
	if s := c.String("submarket"); s != "" {
		reg.Agent.Submarket = &s
	}
	return reg
}

func register(c *cli.Context) error {
	rt, err := enter(c, navigation.RouteRegister, nil)
	if err != nil {
		return err
	}

	p, err := rt.Session.Register(c.Context, registration(c))
	if err != nil {
		return err
	}
	if _, err := rt.Router.Push(navigation.RouteDashboard, nil); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Account created, logged in as %s (%s)\n", p.Name, p.Role)
	return nil
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the stored session token",
		Action: logout,
	}
}

func logout(c *cli.Context) error {
	rt, err := runtimeFor(c)
	if err != nil {
		return err
	}
	if err := rt.Session.Logout(); err != nil {
		return err
	}
	if _, err := rt.Router.Push(navigation.RouteHome, nil); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Logged out")
	return nil
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the profile of the logged-in account",
		Action: whoami,
	}
}

func whoami(c *cli.Context) error {
	rt, err := enter(c, navigation.RouteDashboard, nil)
	if err != nil {
		return err
	}
	p, err := rt.Session.FetchCurrentPrincipal(c.Context)
	if err != nil {
		return err
	}
	return render(c, p)
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show whether a session is stored",
		Action: status,
	}
}

type statusView struct {
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Role          string `json:"user_type,omitempty" yaml:"user_type,omitempty"`
	Server        string `json:"server" yaml:"server"`
	Backend       string `json:"credential_backend" yaml:"credential_backend"`
	Route         string `json:"route" yaml:"route"`
}

func status(c *cli.Context) error {
	rt, err := runtimeFor(c)
	if err != nil {
		return err
	}

	profile := rt.Session.Profile()
	return render(c, statusView{
		Authenticated: rt.Session.Session().IsAuthenticated(),
		Name:          profile.Name(),
		Role:          string(profile.Role()),
		Server:        rt.Client.BaseURL(),
		Backend:       rt.Config.Credential.Backend,
		Route:         rt.Router.Current().Path,
	})
}
