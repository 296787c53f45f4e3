package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecoply-go/internal/api"
	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/navigation"
	"github.com/yndnr/ecoply-go/internal/transport"
)

// OffersCommand returns the offers subcommand group.
func OffersCommand() *cli.Command {
	return &cli.Command{
		Name:  "offers",
		Usage: "Browse and trade energy offers",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List open offers",
				Flags: append(pageFlags(),
					&cli.StringFlag{Name: "submarket", Usage: "Filter by submarket"},
					&cli.StringFlag{Name: "energy-type", Usage: "Filter by energy type (solar, eolic, geothermal, hydroelectric)"},
					&cli.StringFlag{Name: "period-start", Usage: "Supply period start (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "period-end", Usage: "Supply period end (YYYY-MM-DD)"},
				),
				Action: offersList,
			},
			{
				Name:      "get",
				Usage:     "Show an offer",
				ArgsUsage: "OFFER_UUID",
				Action:    offersGet,
			},
			{
				Name:   "mine",
				Usage:  "List the offers published by this account",
				Action: offersMine,
			},
			{
				Name:      "purchase",
				Aliases:   []string{"buy"},
				Usage:     "Buy energy from an offer",
				ArgsUsage: "OFFER_UUID",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "quantity", Aliases: []string{"q"}, Usage: "Quantity in MWh", Required: true},
					&cli.StringFlag{Name: "payment-method", Aliases: []string{"m"}, Usage: "pix, card or billet", Value: "pix"},
				},
				Action: offersPurchase,
			},
			{
				Name:  "create",
				Usage: "Publish a new offer",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "price", Usage: "Price per MWh", Required: true},
					&cli.Float64Flag{Name: "quantity", Aliases: []string{"q"}, Usage: "Quantity in MWh", Required: true},
					&cli.StringFlag{Name: "period-start", Usage: "Supply period start (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "period-end", Usage: "Supply period end (YYYY-MM-DD)", Required: true},
					&cli.StringFlag{Name: "energy-type", Usage: "solar, eolic, geothermal or hydroelectric", Required: true},
					&cli.StringFlag{Name: "description", Usage: "Free-text description"},
				},
				Action: offersCreate,
			},
			{
				Name:      "delete",
				Usage:     "Withdraw one of this account's offers",
				ArgsUsage: "OFFER_UUID",
				Action:    offersDelete,
			},
		},
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Value: 1, Usage: "Page number"},
		&cli.IntFlag{Name: "page-size", Value: api.DefaultPageSize, Usage: fmt.Sprintf("Page size (max %d)", api.MaxPageSize)},
	}
}

// offerArg returns the first positional argument as route params.
func offerArg(c *cli.Context) (string, map[string]string, error) {
	id := c.Args().First()
	if id == "" {
		return "", nil, domain.ErrMissingArgument.WithDetails("OFFER_UUID")
	}
	return id, map[string]string{"id": id}, nil
}

func renderPage[T any](c *cli.Context, page *transport.Page[T]) error {
	if !tableOutput(c) {
		return render(c, page)
	}
	if err := render(c, page.Data); err != nil {
		return err
	}
	if page.HasNext {
		fmt.Fprintf(c.App.Writer, "\npage %d, more with --page %d\n", page.Page, page.Page+1)
	}
	return nil
}

func offersList(c *cli.Context) error {
	rt, err := enter(c, navigation.RouteDashboard, nil)
	if err != nil {
		return err
	}
	page, err := rt.Offers.List(c.Context, api.ListOffersParams{
		Page:        c.Int("page"),
		PageSize:    c.Int("page-size"),
		Submarket:   c.String("submarket"),
		EnergyType:  c.String("energy-type"),
		PeriodStart: c.String("period-start"),
		PeriodEnd:   c.String("period-end"),
	})
	if err != nil {
		return err
	}
	return renderPage(c, page)
}

func offersGet(c *cli.Context) error {
	id, params, err := offerArg(c)
	if err != nil {
		return err
	}
	rt, err := enter(c, navigation.RouteOfferDetail, params)
	if err != nil {
		return err
	}
	offer, err := rt.Offers.Get(c.Context, id)
	if err != nil {
		return err
	}
	return render(c, offer)
}

func offersMine(c *cli.Context) error {
	rt, err := enter(c, navigation.RouteDashboard, nil)
	if err != nil {
		return err
	}
	offers, err := rt.Offers.Mine(c.Context)
	if err != nil {
		return err
	}
	return render(c, offers)
}

func offersPurchase(c *cli.Context) error {
	id, params, err := offerArg(c)
	if err != nil {
		return err
	}
	rt, err := enter(c, navigation.RouteCheckout, params)
	if err != nil {
		return err
	}
	purchase, err := rt.Offers.Purchase(c.Context, id, api.PurchaseRequest{
		QuantityMWh:   c.Float64("quantity"),
		PaymentMethod: c.String("payment-method"),
	})
	if err != nil {
		return err
	}
	return render(c, purchase)
}

func offersCreate(c *cli.Context) error {
	rt, err := enter(c, navigation.RouteDashboard, nil)
	if err != nil {
		return err
	}
	offer, err := rt.Offers.Create(c.Context, api.CreateOfferRequest{
		PricePerMWh: c.Float64("price"),
		QuantityMWh: c.Float64("quantity"),
		PeriodStart: c.String("period-start"),
		PeriodEnd:   c.String("period-end"),
		Description: c.String("description"),
		EnergyType:  c.String("energy-type"),
	})
	if err != nil {
		return err
	}
	return render(c, offer)
}

func offersDelete(c *cli.Context) error {
	id, params, err := offerArg(c)
	if err != nil {
		return err
	}
	rt, err := enter(c, navigation.RouteManageOffer, params)
	if err != nil {
		return err
	}
	if err := rt.Offers.Delete(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Offer %s deleted\n", id)
	return nil
}
