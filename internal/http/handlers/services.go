package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lststech/agenda-backend/internal/catalog"
)

// ServicesHandler serves the bookable service catalog.
type ServicesHandler struct {
	catalog *catalog.Catalog
}

// NewServicesHandler creates a new services handler.
func NewServicesHandler(c *catalog.Catalog) *ServicesHandler {
	return &ServicesHandler{catalog: c}
}

// ServiceView is one catalog entry in the services response.
type ServiceView struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	PriceUSD        float64 `json:"price_usd"`
	PriceCOP        float64 `json:"price_cop"`
	Type            string  `json:"type"`
}

// ListServices handles GET /api/services.
func (h *ServicesHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	all := h.catalog.All()
	views := make([]ServiceView, 0, len(all))
	for _, s := range all {
		views = append(views, ServiceView{
			ID:              s.ID,
			Name:            s.Name,
			Description:     s.Description,
			DurationMinutes: int(s.Duration / time.Minute),
			PriceUSD:        s.PriceUSD,
			PriceCOP:        h.catalog.PriceCOP(s),
			Type:            string(s.Type),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]ServiceView{"services": views})
}
