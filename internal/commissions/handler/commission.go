package handler

import (
	"net/http"

	"resort/internal/commissions/service"
	httputil "resort/pkg/http"
	"resort/pkg/logger"
	"resort/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
)

type CalculationResponse struct {
	CommissionID string          `json:"commission_id"`
	BookingValue decimal.Decimal `json:"booking_value"`
	Nights       int             `json:"nights"`
	Amount       decimal.Decimal `json:"amount"`
}

type CommissionHandler struct {
	service service.CommissionService
	log     *logger.Logger
}

func NewCommissionHandler(service service.CommissionService, log *logger.Logger) *CommissionHandler {
	return &CommissionHandler{
		service: service,
		log:     log,
	}
}

func (h *CommissionHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var commission model.Commission
	if err := httputil.DecodeJSON(r, &commission); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &commission); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, commission); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *CommissionHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	commission, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, commission); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CommissionHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	commissions, total, err := h.service.GetAll(r.Context(), r.URL.Query().Get("agent_id"), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, commissions, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *CommissionHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var commission model.Commission
	if err := httputil.DecodeJSON(r, &commission); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &commission); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CommissionHandler) Calculate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	value, err := httputil.ExtractDecimal(r, "booking_value")
	if err != nil {
		h.writeError(w, "Calculate", err)
		return
	}
	nights, err := httputil.ExtractInt(r, "nights", 1)
	if err != nil {
		h.writeError(w, "Calculate", err)
		return
	}

	id := ps.ByName("id")
	amount, err := h.service.Calculate(r.Context(), id, value, nights)
	if err != nil {
		h.writeError(w, "Calculate", err)
		return
	}

	if err := httputil.WriteSuccess(w, CalculationResponse{
		CommissionID: id,
		BookingValue: value,
		Nights:       nights,
		Amount:       amount,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Calculate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CommissionHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CommissionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/commissions", h.Create)
	router.GET("/api/v1/commissions", h.GetAll)
	router.GET("/api/v1/commissions/id/:id", h.GetByID)
	router.PUT("/api/v1/commissions/id/:id", h.Update)
	router.GET("/api/v1/commissions/id/:id/calculate", h.Calculate)
}
