package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/naphex/ledger/internal/adapter/http/dto"
	"github.com/naphex/ledger/internal/adapter/http/middleware"
	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/usecase"
)

var errInvalidStatus = errors.New("status must be pending, approved or rejected")

// WithdrawalHandler serves the admin payout queue.
type WithdrawalHandler struct {
	withdrawalUC *usecase.WithdrawalUseCase
}

// NewWithdrawalHandler creates a new withdrawal handler.
func NewWithdrawalHandler(withdrawalUC *usecase.WithdrawalUseCase) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalUC: withdrawalUC}
}

// Create handles POST /withdrawals
func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	created, err := h.withdrawalUC.CreateWithdrawal(r.Context(), usecase.CreateWithdrawalInput{
		UserKey:         req.UserKey,
		TokenClass:      domain.TokenClass(req.TokenClass),
		RequestedTokens: req.RequestedTokens,
		Method:          req.Method,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create withdrawal", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.WithdrawalFromDomain(created))
}

// Get handles GET /withdrawals/{id}
func (h *WithdrawalHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.withdrawalUC.GetWithdrawal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get withdrawal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalFromDomain(req))
}

// List handles GET /withdrawals
func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	status, err := parseStatusQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	reqs, err := h.withdrawalUC.ListWithdrawals(r.Context(), usecase.ListWithdrawalsInput{
		Status: status,
		Limit:  parseIntQuery(r, "limit", 0),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list withdrawals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalsFromDomain(reqs))
}

// ListByUser handles GET /users/{userKey}/withdrawals
func (h *WithdrawalHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.withdrawalUC.ListUserWithdrawals(
		r.Context(),
		chi.URLParam(r, "userKey"),
		parseIntQuery(r, "limit", 0),
		parseIntQuery(r, "offset", 0),
	)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list withdrawals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalsFromDomain(reqs))
}

// Approve handles POST /withdrawals/{id}/approve
func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.withdrawalUC.Approve)
}

// Reject handles POST /withdrawals/{id}/reject
func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.withdrawalUC.Reject)
}

func (h *WithdrawalHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id, decidedBy string) (*domain.WithdrawalRequest, error),
) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	req, err := fn(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to decide withdrawal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalFromDomain(req))
}

func parseStatusQuery(r *http.Request) (domain.Status, error) {
	switch value := r.URL.Query().Get("status"); value {
	case "":
		return "", nil
	case string(domain.StatusPending):
		return domain.StatusPending, nil
	case string(domain.StatusApproved):
		return domain.StatusApproved, nil
	case string(domain.StatusRejected):
		return domain.StatusRejected, nil
	default:
		return "", errInvalidStatus
	}
}
