package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/transport"
)

// Valid energy types.
var EnergyTypes = []string{"solar", "eolic", "geothermal", "hydroelectric"}

// Valid payment methods.
var PaymentMethods = []string{"pix", "card", "billet"}

// Status is a status field the server encodes either as a string or as
// a number, depending on the endpoint.
type Status string

// UnmarshalJSON accepts both encodings.
func (s *Status) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = Status(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = Status(n.String())
	return nil
}

// Offer is an energy offer.
type Offer struct {
	UUID                 string  `json:"uuid" yaml:"uuid"`
	PricePerMWh          float64 `json:"price_per_mwh" yaml:"price_per_mwh"`
	InitialQuantityMWh   float64 `json:"initial_quantity_mwh" yaml:"initial_quantity_mwh" table:"wide"`
	RemainingQuantityMWh float64 `json:"remaining_quantity_mwh" yaml:"remaining_quantity_mwh"`
	Description          string  `json:"description" yaml:"description" table:"wide"`
	PeriodStart          string  `json:"period_start" yaml:"period_start"`
	PeriodEnd            string  `json:"period_end" yaml:"period_end"`
	Status               Status  `json:"status" yaml:"status"`
	EnergyType           string  `json:"energy_type" yaml:"energy_type"`
	Submarket            string  `json:"submarket" yaml:"submarket"`
	SellerAgentUUID      string  `json:"seller_agent_uuid" yaml:"seller_agent_uuid" table:"wide"`
	CreatedAt            string  `json:"created_at" yaml:"created_at" table:"wide"`
}

// ListOffersParams filters the offer listing.
type ListOffersParams struct {
	Page        int
	PageSize    int
	Submarket   string
	EnergyType  string
	PeriodStart string
	PeriodEnd   string
}

func (p ListOffersParams) query() (url.Values, error) {
	q, err := pageQuery(p.Page, p.PageSize)
	if err != nil {
		return nil, err
	}
	if p.EnergyType != "" && !contains(EnergyTypes, p.EnergyType) {
		return nil, domain.ErrInvalidArgument.WithDetails("energy type must be one of solar, eolic, geothermal, hydroelectric")
	}
	setIf(q, "submarket", p.Submarket)
	setIf(q, "energy_type", p.EnergyType)
	setIf(q, "period_start", p.PeriodStart)
	setIf(q, "period_end", p.PeriodEnd)
	return q, nil
}

// CreateOfferRequest is the payload of a new offer.
type CreateOfferRequest struct {
	PricePerMWh float64 `json:"price_per_mwh"`
	QuantityMWh float64 `json:"quantity_mwh"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	Description string  `json:"description"`
	EnergyType  string  `json:"energy_type"`
}

// Validate performs local shape checks.
func (r CreateOfferRequest) Validate() error {
	switch {
	case r.PricePerMWh <= 0:
		return domain.ErrInvalidArgument.WithDetails("price per MWh must be positive")
	case r.QuantityMWh <= 0:
		return domain.ErrInvalidArgument.WithDetails("quantity must be positive")
	case r.PeriodStart == "" || r.PeriodEnd == "":
		return domain.ErrMissingArgument.WithDetails("period start and end")
	case !contains(EnergyTypes, r.EnergyType):
		return domain.ErrInvalidArgument.WithDetails("energy type must be one of solar, eolic, geothermal, hydroelectric")
	}
	return nil
}

// PurchaseRequest buys part of an offer.
type PurchaseRequest struct {
	QuantityMWh   float64 `json:"quantity_mwh"`
	PaymentMethod string  `json:"payment_method"`
}

// Validate performs local shape checks.
func (r PurchaseRequest) Validate() error {
	if r.QuantityMWh <= 0 {
		return domain.ErrInvalidArgument.WithDetails("quantity must be positive")
	}
	if !contains(PaymentMethods, r.PaymentMethod) {
		return domain.ErrInvalidArgument.WithDetails("payment method must be one of pix, card, billet")
	}
	return nil
}

// OffersService reads and trades offers.
type OffersService struct {
	client *transport.Client
}

// NewOffersService creates an OffersService.
func NewOffersService(c *transport.Client) *OffersService {
	return &OffersService{client: c}
}

// List returns one page of offers.
func (s *OffersService) List(ctx context.Context, p ListOffersParams) (*transport.Page[Offer], error) {
	q, err := p.query()
	if err != nil {
		return nil, err
	}
	var out transport.Page[Offer]
	if err := s.client.Get(ctx, OffersPath, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single offer.
func (s *OffersService) Get(ctx context.Context, uuid string) (*Offer, error) {
	if uuid == "" {
		return nil, domain.ErrMissingArgument.WithDetails("offer uuid")
	}
	var out transport.Envelope[Offer]
	if err := s.client.Get(ctx, OfferPath(uuid), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Mine returns the offers owned by the current supplier.
func (s *OffersService) Mine(ctx context.Context) ([]Offer, error) {
	var out transport.Envelope[[]Offer]
	if err := s.client.Get(ctx, MyOffersPath, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Create publishes a new offer.
func (s *OffersService) Create(ctx context.Context, req CreateOfferRequest) (*Offer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out transport.Envelope[Offer]
	if err := s.client.Post(ctx, OffersPath, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Delete removes an offer owned by the current supplier.
func (s *OffersService) Delete(ctx context.Context, uuid string) error {
	if uuid == "" {
		return domain.ErrMissingArgument.WithDetails("offer uuid")
	}
	return s.client.Delete(ctx, OfferPath(uuid))
}

// Purchase buys req.QuantityMWh from an offer.
func (s *OffersService) Purchase(ctx context.Context, uuid string, req PurchaseRequest) (*Purchase, error) {
	if uuid == "" {
		return nil, domain.ErrMissingArgument.WithDetails("offer uuid")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out transport.Envelope[Purchase]
	if err := s.client.Post(ctx, OfferPurchasesPath(uuid), req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Paging defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func pageQuery(page, size int) (url.Values, error) {
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return nil, domain.ErrInvalidArgument.WithDetails("page must be >= 1")
	}
	if size < 1 || size > MaxPageSize {
		return nil, domain.ErrInvalidArgument.WithDetails("page size must be between 1 and 100")
	}
	return url.Values{
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(size)},
	}, nil
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
