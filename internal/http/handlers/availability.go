package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/lststech/agenda-backend/internal/availability"
	"github.com/lststech/agenda-backend/pkg/logging"
)

const dateLayout = "2006-01-02"

// SlotLister computes the bookable slots for one calendar day.
type SlotLister interface {
	Slots(ctx context.Context, day time.Time) ([]availability.Slot, error)
}

// AvailabilityHandler serves the per-day slot listing.
type AvailabilityHandler struct {
	slots  SlotLister
	loc    *time.Location
	logger *logging.Logger
}

// NewAvailabilityHandler creates a new availability handler.
func NewAvailabilityHandler(slots SlotLister, loc *time.Location, logger *logging.Logger) *AvailabilityHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityHandler{slots: slots, loc: loc, logger: logger}
}

// SlotView is one slot in the availability response.
type SlotView struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// AvailabilityResponse lists a day's slots.
type AvailabilityResponse struct {
	Date  string     `json:"date"`
	Slots []SlotView `json:"slots"`
}

// GetSlots handles GET /api/availability?date=YYYY-MM-DD.
func (h *AvailabilityHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		writeError(w, http.StatusBadRequest, "missing date parameter")
		return
	}
	day, err := time.ParseInLocation(dateLayout, dateParam, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	slots, err := h.slots.Slots(r.Context(), day)
	if err != nil {
		h.logger.Error("slot listing failed", "error", err, "date", dateParam)
		writeError(w, http.StatusBadGateway, "could not load availability")
		return
	}

	resp := AvailabilityResponse{Date: dateParam, Slots: make([]SlotView, 0, len(slots))}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, SlotView{Time: s.Label, Available: s.Available})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
