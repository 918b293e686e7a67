package handler

import (
	"net/http"

	"resort/internal/reports/accrual"
	"resort/internal/reports/service"
	apperrors "resort/pkg/errors"
	httputil "resort/pkg/http"
	kafkamw "resort/pkg/kafka/middleware"
	"resort/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type ConsumerStats struct {
	Metrics kafkamw.Snapshot `json:"metrics"`
	Lag     int64            `json:"lag"`
}

type LiveReport struct {
	accrual.Snapshot
	Consumer *ConsumerStats `json:"consumer,omitempty"`
}

type ReportHandler struct {
	service service.ReportService
	live    *accrual.Accrual
	stats   func() *ConsumerStats
	log     *logger.Logger
}

// NewReportHandler serves the derived report and, when live is non-nil, the
// running accrual fed by the booking events consumer.
func NewReportHandler(service service.ReportService, live *accrual.Accrual, stats func() *ConsumerStats, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		live:    live,
		stats:   stats,
		log:     log,
	}
}

func (h *ReportHandler) CommissionReport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	from, err := httputil.ExtractDate(r, "from")
	if err != nil {
		h.writeError(w, "CommissionReport", err)
		return
	}
	to, err := httputil.ExtractDate(r, "to")
	if err != nil {
		h.writeError(w, "CommissionReport", err)
		return
	}

	report, err := h.service.CommissionReport(r.Context(), from, to)
	if err != nil {
		h.writeError(w, "CommissionReport", err)
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "CommissionReport", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReportHandler) LiveCommissions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.live == nil {
		h.writeError(w, "LiveCommissions", apperrors.Unavailable("Live commission accrual"))
		return
	}

	live := LiveReport{Snapshot: h.live.Snapshot()}
	if h.stats != nil {
		live.Consumer = h.stats()
	}

	if err := httputil.WriteSuccess(w, live); err != nil {
		h.log.Error("failed to write success response", "handler", "LiveCommissions", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReportHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReportHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/reports/commissions", h.CommissionReport)
	router.GET("/api/v1/reports/commissions/live", h.LiveCommissions)
}
