package handler

import (
	"net/http"

	"resort/internal/resorts/service"
	httputil "resort/pkg/http"
	"resort/pkg/logger"
	"resort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ResortHandler struct {
	resorts   service.ResortService
	transfers service.TransferService
	settings  service.SettingService
	log       *logger.Logger
}

func NewResortHandler(resorts service.ResortService, transfers service.TransferService, settings service.SettingService, log *logger.Logger) *ResortHandler {
	return &ResortHandler{
		resorts:   resorts,
		transfers: transfers,
		settings:  settings,
		log:       log,
	}
}

func (h *ResortHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var resort model.Resort
	if err := httputil.DecodeJSON(r, &resort); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.resorts.Create(r.Context(), &resort); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, resort); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ResortHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resort, err := h.resorts.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, resort); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ResortHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	resorts, total, err := h.resorts.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, resorts, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ResortHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var resort model.Resort
	if err := httputil.DecodeJSON(r, &resort); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := h.resorts.Update(r.Context(), ps.ByName("id"), &resort); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ResortHandler) CreateTransfer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var transfer model.Transfer
	if err := httputil.DecodeJSON(r, &transfer); err != nil {
		h.writeError(w, "CreateTransfer", err)
		return
	}

	if err := h.transfers.Create(r.Context(), &transfer); err != nil {
		h.writeError(w, "CreateTransfer", err)
		return
	}

	if err := httputil.WriteCreated(w, transfer); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateTransfer", "operation", "WriteCreated", "error", err)
	}
}

func (h *ResortHandler) GetTransfer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	transfer, err := h.transfers.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetTransfer", err)
		return
	}

	if err := httputil.WriteSuccess(w, transfer); err != nil {
		h.log.Error("failed to write success response", "handler", "GetTransfer", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ResortHandler) ListTransfers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	transfers, err := h.transfers.ListByResort(r.Context(), r.URL.Query().Get("resort_id"))
	if err != nil {
		h.writeError(w, "ListTransfers", err)
		return
	}

	if err := httputil.WriteSuccess(w, transfers); err != nil {
		h.log.Error("failed to write success response", "handler", "ListTransfers", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ResortHandler) PutSetting(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Value string `json:"value"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "PutSetting", err)
		return
	}

	setting := model.Setting{Key: ps.ByName("key"), Value: body.Value}
	if err := h.settings.Put(r.Context(), &setting); err != nil {
		h.writeError(w, "PutSetting", err)
		return
	}

	if err := httputil.WriteSuccess(w, setting); err != nil {
		h.log.Error("failed to write success response", "handler", "PutSetting", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ResortHandler) ListSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		h.writeError(w, "ListSettings", err)
		return
	}

	if err := httputil.WriteSuccess(w, settings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListSettings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ResortHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ResortHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/resorts", h.Create)
	router.GET("/api/v1/resorts", h.GetAll)
	router.GET("/api/v1/resorts/id/:id", h.GetByID)
	router.PUT("/api/v1/resorts/id/:id", h.Update)

	router.POST("/api/v1/transfers", h.CreateTransfer)
	router.GET("/api/v1/transfers", h.ListTransfers)
	router.GET("/api/v1/transfers/id/:id", h.GetTransfer)

	router.PUT("/api/v1/settings/:key", h.PutSetting)
	router.GET("/api/v1/settings", h.ListSettings)
}
