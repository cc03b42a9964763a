package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/naphex/ledger/internal/adapter/http/dto"
	"github.com/naphex/ledger/internal/adapter/http/middleware"
	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/usecase"
	"github.com/naphex/ledger/internal/usecase/mocks"
)

func newWithdrawalHandlerForTest(repo *mocks.MockWithdrawalRepository) *WithdrawalHandler {
	uc := usecase.NewWithdrawalUseCase(
		mocks.NewMockTransactionManager(),
		repo,
		mocks.NewMockAuditRepository(),
		nil,
		mocks.NewMockIDGenerator(),
		nil,
		decimal.NewFromInt(23),
	)
	return NewWithdrawalHandler(uc)
}

func withUser(r *http.Request, user *domain.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.UserContextKey, user))
}

func TestWithdrawalHandler_Create_Success(t *testing.T) {
	h := newWithdrawalHandlerForTest(mocks.NewMockWithdrawalRepository())

	body, _ := json.Marshal(dto.CreateWithdrawalRequest{
		UserKey:         "user-1",
		TokenClass:      "binary",
		RequestedTokens: decimal.NewFromInt(100),
	})

	req := httptest.NewRequest(http.MethodPost, "/withdrawals", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.WithdrawalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", resp.Status)
	}
	if !resp.Tax.Equal(decimal.NewFromInt(23)) || !resp.FinalTokens.Equal(decimal.NewFromInt(77)) {
		t.Fatalf("unexpected tax split: tax=%s final=%s", resp.Tax, resp.FinalTokens)
	}
	if resp.Method != domain.DefaultMethod {
		t.Fatalf("expected default method, got %s", resp.Method)
	}
}

func TestWithdrawalHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  dto.CreateWithdrawalRequest
	}{
		{
			name: "missing user key",
			req:  dto.CreateWithdrawalRequest{TokenClass: "binary", RequestedTokens: decimal.NewFromInt(10)},
		},
		{
			name: "missing token class",
			req:  dto.CreateWithdrawalRequest{UserKey: "user-1", RequestedTokens: decimal.NewFromInt(10)},
		},
		{
			name: "zero amount",
			req:  dto.CreateWithdrawalRequest{UserKey: "user-1", TokenClass: "binary"},
		},
		{
			name: "regular tokens not withdrawable",
			req:  dto.CreateWithdrawalRequest{UserKey: "user-1", TokenClass: "regular", RequestedTokens: decimal.NewFromInt(10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newWithdrawalHandlerForTest(mocks.NewMockWithdrawalRepository())

			body, _ := json.Marshal(tt.req)
			req := httptest.NewRequest(http.MethodPost, "/withdrawals", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWithdrawalHandler_Approve_Success(t *testing.T) {
	repo := mocks.NewMockWithdrawalRepository()
	h := newWithdrawalHandlerForTest(repo)

	seedWithdrawal(t, repo, "wd-1", domain.StatusPending)

	req := httptest.NewRequest(http.MethodPost, "/withdrawals/wd-1/approve", nil)
	req = setChiURLParam(req, "id", "wd-1")
	req = withUser(req, &domain.User{ID: "admin-1", Role: domain.RoleAdmin})
	rec := httptest.NewRecorder()

	h.Approve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.WithdrawalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != domain.StatusApproved || resp.DecidedBy != "admin-1" {
		t.Fatalf("unexpected decision state: %+v", resp)
	}
}

func TestWithdrawalHandler_Approve_NoUser(t *testing.T) {
	h := newWithdrawalHandlerForTest(mocks.NewMockWithdrawalRepository())

	req := httptest.NewRequest(http.MethodPost, "/withdrawals/wd-1/approve", nil)
	req = setChiURLParam(req, "id", "wd-1")
	rec := httptest.NewRecorder()

	h.Approve(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWithdrawalHandler_Reject_AlreadyDecided(t *testing.T) {
	repo := mocks.NewMockWithdrawalRepository()
	h := newWithdrawalHandlerForTest(repo)

	seedWithdrawal(t, repo, "wd-1", domain.StatusApproved)

	req := httptest.NewRequest(http.MethodPost, "/withdrawals/wd-1/reject", nil)
	req = setChiURLParam(req, "id", "wd-1")
	req = withUser(req, &domain.User{ID: "admin-1", Role: domain.RoleAdmin})
	rec := httptest.NewRecorder()

	h.Reject(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWithdrawalHandler_Get_NotFound(t *testing.T) {
	h := newWithdrawalHandlerForTest(mocks.NewMockWithdrawalRepository())

	req := httptest.NewRequest(http.MethodGet, "/withdrawals/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestWithdrawalHandler_List_RejectsUnknownStatus(t *testing.T) {
	h := newWithdrawalHandlerForTest(mocks.NewMockWithdrawalRepository())

	req := httptest.NewRequest(http.MethodGet, "/withdrawals?status=bogus", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWithdrawalHandler_ListByUser(t *testing.T) {
	repo := mocks.NewMockWithdrawalRepository()
	h := newWithdrawalHandlerForTest(repo)

	seedWithdrawal(t, repo, "wd-1", domain.StatusPending)

	req := httptest.NewRequest(http.MethodGet, "/users/user-1/withdrawals", nil)
	req = setChiURLParam(req, "userKey", "user-1")
	rec := httptest.NewRecorder()

	h.ListByUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []dto.WithdrawalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "wd-1" {
		t.Fatalf("expected wd-1, got %+v", resp)
	}
}

func seedWithdrawal(t *testing.T, repo *mocks.MockWithdrawalRepository, id string, status domain.Status) {
	t.Helper()

	req, err := domain.NewWithdrawalRequest(id, "user-1", domain.TokenBinary, decimal.NewFromInt(100), decimal.NewFromInt(23), "", time.Now().UTC())
	if err != nil {
		t.Fatalf("seed withdrawal: %v", err)
	}
	req.Status = status

	if err := repo.Create(context.Background(), &mocks.MockTransaction{}, req); err != nil {
		t.Fatalf("seed withdrawal: %v", err)
	}
}
