package handler

import (
	"net/http"

	"resort/internal/promotions/service"
	httputil "resort/pkg/http"
	"resort/pkg/logger"
	"resort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PromotionHandler struct {
	service service.PromotionService
	log     *logger.Logger
}

func NewPromotionHandler(service service.PromotionService, log *logger.Logger) *PromotionHandler {
	return &PromotionHandler{
		service: service,
		log:     log,
	}
}

func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var promotion model.Promotion
	if err := httputil.DecodeJSON(r, &promotion); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &promotion); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, promotion); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *PromotionHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	promotion, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, promotion); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PromotionHandler) GetByCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	promotion, err := h.service.GetByCode(r.Context(), ps.ByName("code"))
	if err != nil {
		h.writeError(w, "GetByCode", err)
		return
	}

	if err := httputil.WriteSuccess(w, promotion); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByCode", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PromotionHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	promotions, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, promotions, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var promotion model.Promotion
	if err := httputil.DecodeJSON(r, &promotion); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &promotion); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PromotionHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PromotionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/promotions", h.Create)
	router.GET("/api/v1/promotions", h.GetAll)
	router.GET("/api/v1/promotions/id/:id", h.GetByID)
	router.PUT("/api/v1/promotions/id/:id", h.Update)
	router.GET("/api/v1/promotions/code/:code", h.GetByCode)
}
