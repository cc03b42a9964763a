package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/naphex/ledger/internal/adapter/http/dto"
	"github.com/naphex/ledger/internal/usecase"
)

// Subscriber hands out live ledger update channels per user.
type Subscriber interface {
	Subscribe(userKey string) (<-chan []byte, func())
}

// LedgerHandler serves the reconciled transaction history.
type LedgerHandler struct {
	ledgerUC *usecase.LedgerUseCase
	hub      Subscriber
}

// NewLedgerHandler creates a new ledger handler. hub may be nil when the
// live stream endpoint is not mounted.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase, hub Subscriber) *LedgerHandler {
	return &LedgerHandler{
		ledgerUC: ledgerUC,
		hub:      hub,
	}
}

// Get handles GET /users/{userKey}/ledger
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	query, err := parseLedgerQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	page, err := h.ledgerUC.GetLedger(r.Context(), usecase.GetLedgerInput{
		UserKey: chi.URLParam(r, "userKey"),
		Filter:  query.Filter,
		Limit:   query.Limit,
		Offset:  query.Offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to read ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromPage(page))
}

// Summary handles GET /users/{userKey}/ledger/summary
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledgerUC.GetSummary(r.Context(), chi.URLParam(r, "userKey"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to read summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}

// Refresh handles POST /users/{userKey}/ledger/refresh. It drops the
// cached ledger so the next read rebuilds from a fresh snapshot.
func (h *LedgerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.ledgerUC.Invalidate(r.Context(), chi.URLParam(r, "userKey")); err != nil {
		writeError(w, mapDomainError(err), "failed to invalidate ledger", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stream handles GET /users/{userKey}/ledger/stream. Each upstream
// snapshot that rebuilds the user's ledger is pushed to the client as
// one SSE event.
func (h *LedgerHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	updates, cancel := h.hub.Subscribe(chi.URLParam(r, "userKey"))
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload := <-updates:
			fmt.Fprintf(w, "event: ledger\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func parseLedgerQuery(r *http.Request) (*dto.LedgerQuery, error) {
	kind, err := dto.ParseKind(r.URL.Query().Get("type"))
	if err != nil {
		return nil, err
	}

	from, err := dto.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		return nil, err
	}

	to, err := dto.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		return nil, err
	}

	query := &dto.LedgerQuery{
		Limit:  parseIntQuery(r, "limit", 0),
		Offset: parseIntQuery(r, "offset", 0),
	}
	query.Filter.Kind = kind
	query.Filter.From = from
	query.Filter.To = to

	return query, nil
}
