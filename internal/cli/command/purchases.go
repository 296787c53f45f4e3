package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecoply-go/internal/api"
	"github.com/yndnr/ecoply-go/internal/cli/output"
	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/navigation"
	"github.com/yndnr/ecoply-go/internal/transport"
)

// PurchasesCommand returns the purchases subcommand group.
func PurchasesCommand() *cli.Command {
	return &cli.Command{
		Name:    "purchases",
		Aliases: []string{"purch"},
		Usage:   "Inspect purchases, sales and contracts",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List purchases made by this account",
				Flags:  purchaseListFlags(),
				Action: purchasesList,
			},
			{
				Name:   "sales",
				Usage:  "List sales of this account's offers",
				Flags:  purchaseListFlags(),
				Action: purchasesSales,
			},
			{
				Name:      "contract",
				Usage:     "Show the contract of a purchase",
				ArgsUsage: "PURCHASE_UUID",
				Action:    purchasesContract,
			},
		},
	}
}

func purchaseListFlags() []cli.Flag {
	return append(pageFlags(),
		&cli.StringFlag{Name: "status", Usage: "Filter by status"},
		&cli.StringFlag{Name: "payment-method", Usage: "Filter by payment method (pix, card, billet)"},
		&cli.StringFlag{Name: "order-price", Usage: "Sort by price: asc or desc"},
		&cli.StringFlag{Name: "order-quantity", Usage: "Sort by quantity: asc or desc"},
	)
}

func purchaseParams(c *cli.Context) api.ListPurchasesParams {
	return api.ListPurchasesParams{
		Page:          c.Int("page"),
		PageSize:      c.Int("page-size"),
		Status:        c.String("status"),
		PaymentMethod: c.String("payment-method"),
		OrderPrice:    c.String("order-price"),
		OrderQuantity: c.String("order-quantity"),
	}
}

func purchasesList(c *cli.Context) error {
	return listPurchases(c, (*api.PurchasesService).List)
}

func purchasesSales(c *cli.Context) error {
	return listPurchases(c, (*api.PurchasesService).Sales)
}

type purchaseLister func(*api.PurchasesService, context.Context, api.ListPurchasesParams) (*transport.Page[api.Purchase], error)

func listPurchases(c *cli.Context, list purchaseLister) error {
	rt, err := enter(c, navigation.RouteDashboard, nil)
	if err != nil {
		return err
	}
	page, err := list(rt.Purchases, c.Context, purchaseParams(c))
	if err != nil {
		return err
	}
	return renderPage(c, page)
}

func purchasesContract(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("PURCHASE_UUID")
	}
	rt, err := enter(c, navigation.RouteDashboard, nil)
	if err != nil {
		return err
	}
	contract, err := rt.Purchases.Contract(c.Context, id)
	if err != nil {
		return err
	}
	if tableOutput(c) {
		return render(c, contractView{contract})
	}
	return render(c, contract)
}

// contractView lays a contract out as the parties, the offer terms and the
// amounts owed.
type contractView struct {
	*api.Contract
}

func (v contractView) Table(wide bool) *output.Table {
	t := output.NewTable("SECTION", "FIELD", "VALUE")
	party := func(section string, p api.ContractParty) {
		t.Append(section, "company", p.CompanyName)
		t.Append(section, "cnpj", api.FormatCNPJ(p.CNPJ))
		t.Append(section, "ccee_code", p.CCEECode)
		if wide {
			t.Append(section, "submarket", p.Submarket)
			t.Append(section, "uuid", p.UUID)
		}
	}
	party("supplier", v.Supplier)
	party("buyer", v.Buyer)

	o := v.Offer
	t.Append("offer", "energy_type", o.EnergyType)
	t.Append("offer", "submarket", o.Submarket)
	t.Append("offer", "period", o.PeriodStart+" to "+o.PeriodEnd)
	t.Append("offer", "price_per_mwh", money(o.PricePerMWh))
	t.Append("offer", "quantity_mwh", fmt.Sprintf("%.2f", o.ContractedQuantityMWh))
	if wide {
		t.Append("offer", "uuid", o.UUID)
		t.Append("offer", "description", o.Description)
	}

	t.Append("total", "price", money(v.TotalPrice()))
	t.Append("total", "service_fee", money(v.ServiceFee()))
	return t
}

func money(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}
