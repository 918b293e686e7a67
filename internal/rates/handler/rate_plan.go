package handler

import (
	"net/http"

	"resort/internal/rates/service"
	"resort/pkg/dates"
	httputil "resort/pkg/http"
	"resort/pkg/logger"
	"resort/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
)

type PriceResponse struct {
	RatePlanID string                `json:"rate_plan_id"`
	CheckIn    string                `json:"check_in"`
	CheckOut   string                `json:"check_out"`
	Nights     []service.NightlyRate `json:"nights"`
	Total      decimal.Decimal       `json:"total"`
}

type RatePlanHandler struct {
	service  service.RatePlanService
	resolver service.RateResolver
	log      *logger.Logger
}

func NewRatePlanHandler(service service.RatePlanService, resolver service.RateResolver, log *logger.Logger) *RatePlanHandler {
	return &RatePlanHandler{
		service:  service,
		resolver: resolver,
		log:      log,
	}
}

func (h *RatePlanHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var plan model.RatePlan
	if err := httputil.DecodeJSON(r, &plan); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &plan); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, plan); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RatePlanHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	plan, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, plan); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RatePlanHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	plans, total, err := h.service.GetAll(r.Context(), r.URL.Query().Get("resort_id"), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, plans, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *RatePlanHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var plan model.RatePlan
	if err := httputil.DecodeJSON(r, &plan); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &plan); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RatePlanHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RatePlanHandler) AddSeasonalRate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.SeasonalRateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "AddSeasonalRate", err)
		return
	}

	rate, err := h.service.AddSeasonalRate(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "AddSeasonalRate", err)
		return
	}

	if err := httputil.WriteCreated(w, rate); err != nil {
		h.log.Error("failed to write created response", "handler", "AddSeasonalRate", "operation", "WriteCreated", "error", err)
	}
}

func (h *RatePlanHandler) ListSeasonalRates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rates, err := h.service.ListSeasonalRates(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ListSeasonalRates", err)
		return
	}

	if err := httputil.WriteSuccess(w, rates); err != nil {
		h.log.Error("failed to write success response", "handler", "ListSeasonalRates", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RatePlanHandler) Price(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	checkIn, err := httputil.ExtractDate(r, "check_in")
	if err != nil {
		h.writeError(w, "Price", err)
		return
	}
	checkOut, err := httputil.ExtractDate(r, "check_out")
	if err != nil {
		h.writeError(w, "Price", err)
		return
	}

	ratePlanID := ps.ByName("id")
	nights, err := h.resolver.NightlyRates(r.Context(), ratePlanID, checkIn, checkOut)
	if err != nil {
		h.writeError(w, "Price", err)
		return
	}

	if err := httputil.WriteSuccess(w, PriceResponse{
		RatePlanID: ratePlanID,
		CheckIn:    dates.Key(checkIn),
		CheckOut:   dates.Key(checkOut),
		Nights:     nights,
		Total:      service.Total(nights),
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Price", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RatePlanHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RatePlanHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rate-plans", h.Create)
	router.GET("/api/v1/rate-plans", h.GetAll)
	router.GET("/api/v1/rate-plans/id/:id", h.GetByID)
	router.PATCH("/api/v1/rate-plans/id/:id", h.Update)
	router.DELETE("/api/v1/rate-plans/id/:id", h.Delete)
	router.POST("/api/v1/rate-plans/id/:id/seasonal-rates", h.AddSeasonalRate)
	router.GET("/api/v1/rate-plans/id/:id/seasonal-rates", h.ListSeasonalRates)
	router.GET("/api/v1/rate-plans/id/:id/price", h.Price)
}
