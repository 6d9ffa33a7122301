package handlers

import (
	"net/http"

	"rental-ops-service/internal/api/dto"
	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/ports"
	"rental-ops-service/internal/services"
)

// OrderHandler exposes order CRUD endpoints. Creation assigns the
// per-account, per-kind sequential id inside the store transaction.
type OrderHandler struct {
	Repo     ports.OrderRepository
	Geocoder ports.Geocoder
	Events   *services.OrderEvents
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order := orderFromRequest(account, &req)
	if err := order.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	resolveCoordinates(r.Context(), h.Geocoder, order)

	if err := h.Repo.Create(r.Context(), order); err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.Events.OrderCreated(r.Context(), order)
	writeJSON(w, r, http.StatusCreated, orderToResponse(order))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	filter := ports.OrderFilter{
		Kind:   domain.OrderKind(r.URL.Query().Get("kind")),
		Status: r.URL.Query().Get("status"),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		writeError(w, r, http.StatusBadRequest, "kind must be rental or operation")
		return
	}

	orders, err := h.Repo.List(r.Context(), account, filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListOrdersResponse{Orders: make([]dto.OrderResponse, 0, len(orders))}
	for _, o := range orders {
		res.Orders = append(res.Orders, orderToResponse(o))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.Repo.Get(r.Context(), account, orderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, orderToResponse(order))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Repo.UpdateStatus(r.Context(), account, orderID, req.Status); err != nil {
		writeDomainError(w, r, err)
		return
	}

	order, err := h.Repo.Get(r.Context(), account, orderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, orderToResponse(order))
}
