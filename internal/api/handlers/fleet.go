package handlers

import (
	"net/http"

	"rental-ops-service/internal/api/dto"
	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/ports"
)

// FleetHandler exposes fleet reference data: trucks and the per-km cost
// configuration the optimizer prices routes with.
type FleetHandler struct {
	Repo ports.FleetRepository
}

func (h *FleetHandler) ListTrucks(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	trucks, err := h.Repo.ListTrucks(r.Context(), account)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListTrucksResponse{Trucks: make([]dto.TruckResponse, 0, len(trucks))}
	for _, t := range trucks {
		res.Trucks = append(res.Trucks, dto.TruckResponse{
			ID:        t.ID,
			Plate:     t.Plate,
			TypeName:  t.TypeName,
			BaseID:    t.BaseID,
			CreatedAt: t.CreatedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) CreateTruck(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.CreateTruckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	truck := &domain.Truck{
		AccountID: account,
		Plate:     req.Plate,
		TypeName:  req.TypeName,
		BaseID:    req.BaseID,
	}

	if err := h.Repo.CreateTruck(r.Context(), truck); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.TruckResponse{
		ID:        truck.ID,
		Plate:     truck.Plate,
		TypeName:  truck.TypeName,
		BaseID:    truck.BaseID,
		CreatedAt: truck.CreatedAt,
	})
}

func (h *FleetHandler) ListTruckTypes(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	types, err := h.Repo.ListTruckTypes(r.Context(), account)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListTruckTypesResponse{TruckTypes: make([]dto.TruckTypeResponse, 0, len(types))}
	for _, tt := range types {
		res.TruckTypes = append(res.TruckTypes, dto.TruckTypeResponse{ID: tt.ID, Name: tt.Name})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) CreateTruckType(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.CreateTruckTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tt := &domain.TruckType{AccountID: account, Name: req.Name}
	if err := h.Repo.CreateTruckType(r.Context(), tt); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.TruckTypeResponse{ID: tt.ID, Name: tt.Name})
}

func (h *FleetHandler) ListBases(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	bases, err := h.Repo.ListBases(r.Context(), account)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListBasesResponse{Bases: make([]dto.BaseResponse, 0, len(bases))}
	for _, b := range bases {
		res.Bases = append(res.Bases, dto.BaseResponse{
			ID:      b.ID,
			Name:    b.Name,
			Address: b.Address,
			Coord:   coordToPayload(b.Coord),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) CreateBase(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.CreateBaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b := &domain.Base{
		AccountID: account,
		Name:      req.Name,
		Address:   req.Address,
		Coord:     coordFromPayload(req.Coord),
	}

	if err := h.Repo.CreateBase(r.Context(), b); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.BaseResponse{
		ID:      b.ID,
		Name:    b.Name,
		Address: b.Address,
		Coord:   coordToPayload(b.Coord),
	})
}

func (h *FleetHandler) ListCostConfigs(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	configs, err := h.Repo.ListCostConfigs(r.Context(), account)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListCostConfigsResponse{CostConfigs: make([]dto.CostConfigResponse, 0, len(configs))}
	for _, c := range configs {
		res.CostConfigs = append(res.CostConfigs, dto.CostConfigResponse{
			ID:          c.ID,
			BaseID:      c.BaseID,
			TruckTypeID: c.TruckTypeID,
			Value:       c.Value,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *FleetHandler) CreateCostConfig(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.CreateCostConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Value.IsNegative() {
		writeError(w, r, http.StatusBadRequest, "value must not be negative")
		return
	}

	cfg := &domain.CostConfig{
		AccountID:   account,
		BaseID:      req.BaseID,
		TruckTypeID: req.TruckTypeID,
		Value:       req.Value,
	}

	if err := h.Repo.CreateCostConfig(r.Context(), cfg); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.CostConfigResponse{
		ID:          cfg.ID,
		BaseID:      cfg.BaseID,
		TruckTypeID: cfg.TruckTypeID,
		Value:       cfg.Value,
	})
}
