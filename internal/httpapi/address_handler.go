package httpapi

import (
	"net/http"
	"strings"

	"gerai-be/internal/address"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AddressHandler struct {
	addresses address.Service
}

func NewAddressHandler(addresses address.Service) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

func (h *AddressHandler) Register(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/default", h.setDefault)
}

type addressRequest struct {
	Name         string  `json:"name"`
	ReceiverName string  `json:"receiver_name"`
	Phone        string  `json:"phone"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         string  `json:"city"`
	Province     string  `json:"province"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	SetAsDefault bool    `json:"set_as_default"`
}

func (req addressRequest) validate() map[string][]string {
	fields := map[string][]string{}
	require := func(key, val string) {
		if strings.TrimSpace(val) == "" {
			fields[key] = append(fields[key], key+" is required")
		}
	}
	require("name", req.Name)
	require("receiver_name", req.ReceiverName)
	require("phone", req.Phone)
	require("address_line1", req.AddressLine1)
	require("city", req.City)
	require("province", req.Province)
	require("postal_code", req.PostalCode)
	require("country", req.Country)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (h *AddressHandler) list(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.addresses.List(r.Context())
	if err != nil {
		failErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, addrs)
}

func (h *AddressHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, r, address.ErrInvalidAddressID)
		return
	}

	addr, err := h.addresses.Get(r.Context(), id)
	if err != nil {
		failErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, addr)
}

func (h *AddressHandler) create(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := req.validate(); fields != nil {
		failFields(w, "validation failed", fields)
		return
	}

	addr, err := h.addresses.Create(r.Context(), address.CreateAddressInput{
		Name:         req.Name,
		ReceiverName: req.ReceiverName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		Province:     req.Province,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		SetAsDefault: req.SetAsDefault,
	})
	if err != nil {
		failErr(w, r, err)
		return
	}
	ok(w, http.StatusCreated, addr)
}

func (h *AddressHandler) update(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := req.validate(); fields != nil {
		failFields(w, "validation failed", fields)
		return
	}

	addr, err := h.addresses.Update(r.Context(), address.UpdateAddressInput{
		AddressID:    chi.URLParam(r, "id"),
		Name:         req.Name,
		ReceiverName: req.ReceiverName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		Province:     req.Province,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		SetAsDefault: req.SetAsDefault,
	})
	if err != nil {
		failErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, addr)
}

func (h *AddressHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, r, address.ErrInvalidAddressID)
		return
	}

	if err := h.addresses.Delete(r.Context(), id); err != nil {
		failErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, nil)
}

func (h *AddressHandler) setDefault(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, r, address.ErrInvalidAddressID)
		return
	}

	if err := h.addresses.SetDefaultAddress(r.Context(), id); err != nil {
		failErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, nil)
}
