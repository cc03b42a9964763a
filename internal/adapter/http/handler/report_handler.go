package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/naphex/ledger/internal/adapter/http/dto"
	"github.com/naphex/ledger/internal/usecase"
)

// ReportHandler serves the admin reporting views.
type ReportHandler struct {
	reportUC *usecase.ReportUseCase
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reportUC *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// DailyPayouts handles GET /reports/payouts?from=...&to=...
func (h *ReportHandler) DailyPayouts(w http.ResponseWriter, r *http.Request) {
	from, err := dto.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	to, err := dto.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	if from == nil || to == nil {
		writeError(w, http.StatusBadRequest, "invalid query", "from and to are required")
		return
	}

	report, err := h.reportUC.GenerateDailyPayouts(r.Context(), *from, *to)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to generate report", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PayoutReportFromDomain(report))
}

// Reconcile handles GET /reports/reconcile/{userKey}
func (h *ReportHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportUC.ReconcileUser(r.Context(), chi.URLParam(r, "userKey"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile user", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(report))
}
