package catalog

import (
	"encoding/json"
	"fmt"
	"time"
)

// ServiceType separates services that require payment from free ones.
type ServiceType string

const (
	TypeFree ServiceType = "free"
	TypePaid ServiceType = "paid"
)

// Service is one bookable offering.
type Service struct {
	ID          string
	Name        string
	Description string
	Duration    time.Duration
	PriceUSD    float64
	Type        ServiceType
}

// Catalog holds the bookable services with resolved prices.
type Catalog struct {
	services []Service
	usdToCOP float64
}

// New builds the catalog. pricesJSON is the JSON object mapping service ID
// to USD price (from SERVICE_PRICES); it is validated up front and a
// malformed table is a startup error, never an empty default. usdToCOP is
// the USD->COP exchange rate used for charge amounts.
func New(pricesJSON string, usdToCOP float64) (*Catalog, error) {
	prices := map[string]float64{}
	if pricesJSON != "" {
		if err := json.Unmarshal([]byte(pricesJSON), &prices); err != nil {
			return nil, fmt.Errorf("catalog: invalid service price table: %w", err)
		}
	}
	for id, p := range prices {
		if p < 0 {
			return nil, fmt.Errorf("catalog: negative price for service %q", id)
		}
	}
	if usdToCOP <= 0 {
		return nil, fmt.Errorf("catalog: exchange rate must be positive (got %v)", usdToCOP)
	}

	price := func(id string, fallback float64) float64 {
		if p, ok := prices[id]; ok {
			return p
		}
		return fallback
	}

	return &Catalog{
		usdToCOP: usdToCOP,
		services: []Service{
			{
				ID:          "1",
				Name:        "Initial Consultation",
				Description: "A free 15-minute consultation to discuss your needs",
				Duration:    15 * time.Minute,
				PriceUSD:    0,
				Type:        TypeFree,
			},
			{
				ID:          "2",
				Name:        "Standard Appointment",
				Description: "Regular 30-minute appointment session",
				Duration:    30 * time.Minute,
				PriceUSD:    price("2", 1),
				Type:        TypePaid,
			},
			{
				ID:          "3",
				Name:        "Extended Session",
				Description: "In-depth 60-minute appointment session",
				Duration:    60 * time.Minute,
				PriceUSD:    price("3", 90),
				Type:        TypePaid,
			},
			{
				ID:          "4",
				Name:        "Quick Follow-up",
				Description: "Brief follow-up session for existing clients",
				Duration:    15 * time.Minute,
				PriceUSD:    0,
				Type:        TypeFree,
			},
		},
	}, nil
}

// All returns every service in catalog order.
func (c *Catalog) All() []Service {
	out := make([]Service, len(c.services))
	copy(out, c.services)
	return out
}

// ByID looks up one service.
func (c *Catalog) ByID(id string) (Service, bool) {
	for _, s := range c.services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// Paid returns the services that require payment.
func (c *Catalog) Paid() []Service {
	var out []Service
	for _, s := range c.services {
		if s.Type == TypePaid {
			out = append(out, s)
		}
	}
	return out
}

// Free returns the services that do not require payment.
func (c *Catalog) Free() []Service {
	var out []Service
	for _, s := range c.services {
		if s.Type == TypeFree {
			out = append(out, s)
		}
	}
	return out
}

// PriceCOP converts a service's USD price to Colombian pesos at the
// configured rate, rounded to the nearest peso. Card charges are made in
// COP.
func (c *Catalog) PriceCOP(s Service) float64 {
	cop := s.PriceUSD * c.usdToCOP
	return float64(int64(cop + 0.5))
}
