package api

import (
	"context"
	"net/url"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/transport"
)

// Purchase is a buyer's purchase, or a supplier's sale.
type Purchase struct {
	UUID          string  `json:"uuid" yaml:"uuid"`
	QuantityMWh   float64 `json:"quantity_mwh" yaml:"quantity_mwh"`
	PricePerMWh   float64 `json:"price_per_mwh" yaml:"price_per_mwh"`
	Status        Status  `json:"status" yaml:"status"`
	PaymentMethod string  `json:"payment_method" yaml:"payment_method"`
	OfferUUID     string  `json:"offer_uuid" yaml:"offer_uuid" table:"wide"`
	BuyerName     string  `json:"buyer_name" yaml:"buyer_name"`
	SellerName    string  `json:"seller_name" yaml:"seller_name"`
	SellerUUID    string  `json:"seller_uuid" yaml:"seller_uuid" table:"wide"`
	CreatedAt     string  `json:"created_at" yaml:"created_at" table:"wide"`
}

// ListPurchasesParams filters purchase and sale listings.
type ListPurchasesParams struct {
	Page          int
	PageSize      int
	Status        string
	PaymentMethod string
	// OrderPrice and OrderQuantity are "asc" or "desc".
	OrderPrice    string
	OrderQuantity string
}

func (p ListPurchasesParams) query() (url.Values, error) {
	q, err := pageQuery(p.Page, p.PageSize)
	if err != nil {
		return nil, err
	}
	for _, o := range []string{p.OrderPrice, p.OrderQuantity} {
		if o != "" && o != "asc" && o != "desc" {
			return nil, domain.ErrInvalidArgument.WithDetails("order must be asc or desc")
		}
	}
	setIf(q, "status", p.Status)
	setIf(q, "payment_method", p.PaymentMethod)
	setIf(q, "order_price", p.OrderPrice)
	setIf(q, "order_quantity", p.OrderQuantity)
	return q, nil
}

// ContractParty is one side of a contract.
type ContractParty struct {
	UUID        string `json:"uuid" yaml:"uuid"`
	CNPJ        string `json:"cnpj" yaml:"cnpj"`
	CCEECode    string `json:"ccee_code" yaml:"ccee_code"`
	Submarket   string `json:"submarket_name" yaml:"submarket_name"`
	CompanyName string `json:"company_name" yaml:"company_name"`
}

// ContractOffer is the offer snapshot a contract refers to.
type ContractOffer struct {
	UUID                  string  `json:"uuid" yaml:"uuid"`
	PricePerMWh           float64 `json:"price_per_mwh" yaml:"price_per_mwh"`
	InitialQuantityMWh    float64 `json:"initial_quantity_mwh" yaml:"initial_quantity_mwh"`
	ContractedQuantityMWh float64 `json:"contracted_quantity_mwh" yaml:"contracted_quantity_mwh"`
	Description           string  `json:"description" yaml:"description"`
	PeriodStart           string  `json:"period_start" yaml:"period_start"`
	PeriodEnd             string  `json:"period_end" yaml:"period_end"`
	EnergyType            string  `json:"energy_type" yaml:"energy_type"`
	Submarket             string  `json:"submarket" yaml:"submarket"`
	CreatedAt             string  `json:"created_at" yaml:"created_at"`
}

// Contract is the data behind a purchase contract.
type Contract struct {
	Supplier ContractParty `json:"supplier" yaml:"supplier"`
	Offer    ContractOffer `json:"offer" yaml:"offer"`
	Buyer    ContractParty `json:"buyer" yaml:"buyer"`
}

// PurchasesService lists purchases and sales.
type PurchasesService struct {
	client *transport.Client
}

// NewPurchasesService creates a PurchasesService.
func NewPurchasesService(c *transport.Client) *PurchasesService {
	return &PurchasesService{client: c}
}

// List returns the current buyer's purchases.
func (s *PurchasesService) List(ctx context.Context, p ListPurchasesParams) (*transport.Page[Purchase], error) {
	return s.list(ctx, PurchasesPath, p)
}

// Sales returns the current supplier's sales.
func (s *PurchasesService) Sales(ctx context.Context, p ListPurchasesParams) (*transport.Page[Purchase], error) {
	return s.list(ctx, SalesPath, p)
}

func (s *PurchasesService) list(ctx context.Context, path string, p ListPurchasesParams) (*transport.Page[Purchase], error) {
	q, err := p.query()
	if err != nil {
		return nil, err
	}
	var out transport.Page[Purchase]
	if err := s.client.Get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Contract returns the contract of a purchase.
func (s *PurchasesService) Contract(ctx context.Context, purchaseUUID string) (*Contract, error) {
	if purchaseUUID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("purchase uuid")
	}
	var out transport.Envelope[Contract]
	if err := s.client.Get(ctx, ContractPath(purchaseUUID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ServiceFeePerKWh is the marketplace fee charged to the buyer.
const ServiceFeePerKWh = 0.10

// TotalPrice is the contracted amount at the offer price.
func (c *Contract) TotalPrice() float64 {
	return c.Offer.PricePerMWh * c.Offer.ContractedQuantityMWh
}

// ServiceFee is the marketplace fee for the contracted quantity.
func (c *Contract) ServiceFee() float64 {
	return c.Offer.ContractedQuantityMWh * 1000 * ServiceFeePerKWh
}

// FormatCNPJ renders a 14 digit CNPJ as XX.XXX.XXX/XXXX-XX. Other input is
// returned unchanged.
func FormatCNPJ(cnpj string) string {
	digits := make([]byte, 0, len(cnpj))
	for i := 0; i < len(cnpj); i++ {
		if cnpj[i] >= '0' && cnpj[i] <= '9' {
			digits = append(digits, cnpj[i])
		}
	}
	if len(digits) != 14 {
		return cnpj
	}
	d := string(digits)
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}
