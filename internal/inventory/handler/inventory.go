package handler

import (
	"net/http"

	"resort/internal/inventory/service"
	"resort/internal/inventory/validator"
	"resort/pkg/dates"
	httputil "resort/pkg/http"
	"resort/pkg/logger"
	"resort/pkg/model"
	"resort/pkg/validation"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityResponse struct {
	RatePlanID string `json:"rate_plan_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Count      int    `json:"count"`
	Available  bool   `json:"available"`
}

type InventoryHandler struct {
	service   service.InventoryService
	validator *validator.InventoryValidator
	log       *logger.Logger
}

func NewInventoryHandler(service service.InventoryService, validator *validator.InventoryValidator, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

func (h *InventoryHandler) SetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ratePlanID := ps.ByName("id")

	var req model.InventoryRangeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SetAvailability", err)
		return
	}

	from, to, err := h.validator.ValidateRange(&req)
	if err != nil {
		h.writeError(w, "SetAvailability", validation.ToAppError("Invalid inventory range", err))
		return
	}

	if err := h.service.SetAvailability(r.Context(), ratePlanID, from, to, req.AvailableRooms, req.Blocked); err != nil {
		h.writeError(w, "SetAvailability", err)
		return
	}

	calendar, err := h.service.Calendar(r.Context(), ratePlanID, from, dates.Next(to))
	if err != nil {
		h.writeError(w, "SetAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, calendar); err != nil {
		h.log.Error("failed to write success response", "handler", "SetAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InventoryHandler) Calendar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, err := httputil.ExtractDate(r, "start")
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}
	end, err := httputil.ExtractDate(r, "end")
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	calendar, err := h.service.Calendar(r.Context(), ps.ByName("id"), start, end)
	if err != nil {
		h.writeError(w, "Calendar", err)
		return
	}

	if err := httputil.WriteSuccess(w, calendar); err != nil {
		h.log.Error("failed to write success response", "handler", "Calendar", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InventoryHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	checkIn, err := httputil.ExtractDate(r, "check_in")
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}
	checkOut, err := httputil.ExtractDate(r, "check_out")
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}
	count, err := httputil.ExtractInt(r, "count", 1)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	ratePlanID := ps.ByName("id")
	available, err := h.service.CheckAvailability(r.Context(), ratePlanID, checkIn, checkOut, count)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		RatePlanID: ratePlanID,
		CheckIn:    dates.Key(checkIn),
		CheckOut:   dates.Key(checkOut),
		Count:      count,
		Available:  available,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InventoryHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *InventoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.PUT("/api/v1/rate-plans/id/:id/inventory", h.SetAvailability)
	router.GET("/api/v1/rate-plans/id/:id/inventory", h.Calendar)
	router.GET("/api/v1/rate-plans/id/:id/availability", h.CheckAvailability)
}
