package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"rental-ops-service/internal/api/dto"
	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/logger"
	"rental-ops-service/internal/ports"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Errorw("encode response failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON parses exactly one JSON object into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, r, http.StatusBadRequest, "invalid field: "+verrs[0].Namespace())
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid request")
		return false
	}

	return true
}

// accountID reads the tenant from the X-Account-ID header.
func accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get("X-Account-ID")
	if raw == "" {
		writeError(w, r, http.StatusBadRequest, "X-Account-ID header is required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "X-Account-ID must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a path wildcard as a UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// writeDomainError maps service and repository errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, r, http.StatusBadRequest, ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrProfileNotDue):
		writeError(w, r, http.StatusConflict, "conflict")
	default:
		logger.L.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func coordFromPayload(p *dto.CoordinatesPayload) *domain.Coordinates {
	if p == nil {
		return nil
	}
	return &domain.Coordinates{Lon: p.Lon, Lat: p.Lat}
}

func coordToPayload(c *domain.Coordinates) *dto.CoordinatesPayload {
	if c == nil {
		return nil
	}
	return &dto.CoordinatesPayload{Lon: c.Lon, Lat: c.Lat}
}

func orderToResponse(o *domain.Order) dto.OrderResponse {
	costs := make([]dto.AdditionalCostPayload, 0, len(o.AdditionalCosts))
	for _, c := range o.AdditionalCosts {
		costs = append(costs, dto.AdditionalCostPayload{Name: c.Name, Value: c.Value})
	}

	return dto.OrderResponse{
		ID:                  o.ID,
		Kind:                string(o.Kind),
		SequentialID:        o.SequentialID,
		RecurrenceProfileID: o.RecurrenceProfileID,
		ClientName:          o.ClientName,
		AssigneeName:        o.AssigneeName,
		TruckID:             o.TruckID,
		OriginAddress:       o.OriginAddress,
		OriginCoord:         coordToPayload(o.OriginCoord),
		DestinationAddress:  o.DestinationAddress,
		DestinationCoord:    coordToPayload(o.DestinationCoord),
		StartsAt:            o.StartsAt,
		EndsAt:              o.EndsAt,
		Status:              o.Status,
		BillingType:         string(o.BillingType),
		Value:               o.Value,
		AdditionalCosts:     costs,
		TotalValue:          o.TotalValue(),
		TravelCost:          o.TravelCost,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

// resolveCoordinates fills missing order coordinates from their addresses.
// Best-effort: an unresolvable address leaves the coordinate nil, and the
// optimizer later reports such stops as skipped.
func resolveCoordinates(ctx context.Context, g ports.Geocoder, order *domain.Order) {
	if g == nil {
		return
	}

	if order.DestinationCoord == nil && order.DestinationAddress != "" {
		if c, err := g.Geocode(ctx, order.DestinationAddress); err == nil {
			order.DestinationCoord = &c
		} else {
			logger.L.Warnw("geocode destination failed", "address", order.DestinationAddress, "err", err)
		}
	}

	if order.OriginCoord == nil && order.OriginAddress != "" {
		if c, err := g.Geocode(ctx, order.OriginAddress); err == nil {
			order.OriginCoord = &c
		} else {
			logger.L.Warnw("geocode origin failed", "address", order.OriginAddress, "err", err)
		}
	}
}

// orderFromRequest builds the domain order a create request describes.
// Identity, sequence and status assignment stay with the service/store.
func orderFromRequest(accountID uuid.UUID, req *dto.CreateOrderRequest) *domain.Order {
	costs := make([]domain.AdditionalCost, 0, len(req.AdditionalCosts))
	for _, c := range req.AdditionalCosts {
		costs = append(costs, domain.AdditionalCost{Name: c.Name, Value: c.Value})
	}

	return &domain.Order{
		AccountID:          accountID,
		Kind:               domain.OrderKind(req.Kind),
		ClientName:         req.ClientName,
		AssigneeName:       req.AssigneeName,
		TruckID:            req.TruckID,
		OriginAddress:      req.OriginAddress,
		OriginCoord:        coordFromPayload(req.OriginCoord),
		DestinationAddress: req.DestinationAddress,
		DestinationCoord:   coordFromPayload(req.DestinationCoord),
		StartsAt:           req.StartsAt,
		EndsAt:             req.EndsAt,
		BillingType:        domain.BillingType(req.BillingType),
		Value:              req.Value,
		AdditionalCosts:    costs,
	}
}
