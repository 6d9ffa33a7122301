package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"rental-ops-service/internal/api/dto"
	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/ports"
	"rental-ops-service/internal/services"
)

// RecurrenceHandler exposes recurrence profile endpoints: creation (atomic
// with the first order), cancellation, and the tick trigger.
type RecurrenceHandler struct {
	Engine   *services.RecurrenceEngine
	Geocoder ports.Geocoder
}

func (h *RecurrenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.CreateRecurrenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	days := make([]time.Weekday, 0, len(req.DaysOfWeek))
	for _, d := range req.DaysOfWeek {
		days = append(days, time.Weekday(d))
	}

	profile := &domain.RecurrenceProfile{
		AccountID:   account,
		Kind:        domain.OrderKind(req.Order.Kind),
		Frequency:   domain.Frequency(req.Frequency),
		DaysOfWeek:  days,
		TimeOfDay:   req.TimeOfDay,
		EndDate:     req.EndDate,
		BillingType: domain.BillingType(req.Order.BillingType),
	}

	draft := orderFromRequest(account, &req.Order)
	// Resolve coordinates before the template snapshot freezes them.
	resolveCoordinates(r.Context(), h.Geocoder, draft)

	created, err := h.Engine.CreateProfile(r.Context(), draft, profile, time.Now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, profileToResponse(created))
}

func (h *RecurrenceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}
	profileID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Engine.Cancel(r.Context(), account, profileID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": string(domain.ProfileCancelled)})
}

// Tick processes due profiles. With an X-Account-ID header the sweep is
// scoped to that account and includes the overdue rental pass; without it
// every account's due profiles are processed.
func (h *RecurrenceHandler) Tick(w http.ResponseWriter, r *http.Request) {
	var account *uuid.UUID
	if raw := r.Header.Get("X-Account-ID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "X-Account-ID must be a UUID")
			return
		}
		account = &id
	}

	report, err := h.Engine.Tick(r.Context(), account, time.Now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	generated := report.Generated
	if generated == nil {
		generated = []uuid.UUID{}
	}

	writeJSON(w, r, http.StatusOK, dto.TickResponse{
		Generated:      generated,
		Expired:        report.Expired,
		Failed:         report.Failed,
		OverdueFlagged: report.OverdueFlagged,
	})
}

func profileToResponse(p *domain.RecurrenceProfile) dto.RecurrenceResponse {
	days := make([]int, 0, len(p.DaysOfWeek))
	for _, d := range p.DaysOfWeek {
		days = append(days, int(d))
	}

	return dto.RecurrenceResponse{
		ID:              p.ID,
		Kind:            string(p.Kind),
		Frequency:       string(p.Frequency),
		DaysOfWeek:      days,
		TimeOfDay:       p.TimeOfDay,
		EndDate:         p.EndDate,
		BillingType:     string(p.BillingType),
		Status:          string(p.Status),
		NextRunDate:     p.NextRunDate,
		OriginalOrderID: p.OriginalOrderID,
		CreatedAt:       p.CreatedAt,
	}
}
