package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/naphex/ledger/internal/adapter/http/handler"
	apimiddleware "github.com/naphex/ledger/internal/adapter/http/middleware"
	"github.com/naphex/ledger/internal/domain"
	"github.com/naphex/ledger/internal/infrastructure/auth"
	"github.com/naphex/ledger/internal/usecase"
	"github.com/naphex/ledger/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_LedgerRequiresAuth(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/user-1/ledger", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestNewRouter_LedgerWithToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.JWTManager = jwtManager
	}))

	token, err := jwtManager.Generate(&domain.User{ID: "u-1", Email: "support@naphex.com", Role: domain.RoleSupport})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/user-1/ledger", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_SupportCannotDecide(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.JWTManager = jwtManager
	}))

	token, err := jwtManager.Generate(&domain.User{ID: "u-1", Email: "support@naphex.com", Role: domain.RoleSupport})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals/wd-1/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for support role, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/me",
		"GET /api/v1/users/{userKey}/ledger",
		"GET /api/v1/users/{userKey}/ledger/summary",
		"GET /api/v1/users/{userKey}/ledger/stream",
		"POST /api/v1/users/{userKey}/ledger/refresh",
		"GET /api/v1/users/{userKey}/withdrawals",
		"POST /api/v1/withdrawals/",
		"GET /api/v1/withdrawals/",
		"GET /api/v1/withdrawals/{id}",
		"POST /api/v1/withdrawals/{id}/approve",
		"POST /api/v1/withdrawals/{id}/reject",
		"GET /api/v1/reports/payouts",
		"GET /api/v1/reports/reconcile/{userKey}",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	source := mocks.NewMockSnapshotSource()
	source.FetchFunc = func(ctx context.Context, userKey string) (*domain.Snapshot, error) {
		return &domain.Snapshot{UserKey: userKey}, nil
	}

	ledgerUC := usecase.NewLedgerUseCase(source, mocks.NewMockLedgerCache(), nil, nil)
	userUC := usecase.NewUserUseCase(mocks.NewMockUserRepository(), mocks.NewMockIDGenerator())
	withdrawalUC := usecase.NewWithdrawalUseCase(
		mocks.NewMockTransactionManager(),
		mocks.NewMockWithdrawalRepository(),
		nil,
		ledgerUC,
		mocks.NewMockIDGenerator(),
		nil,
		decimal.NewFromInt(23),
	)
	reportUC := usecase.NewReportUseCase(mocks.NewMockWithdrawalRepository(), source)

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	cfg := RouterConfig{
		AuthHandler:       handler.NewAuthHandler(userUC, jwtManager),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC, nil),
		WithdrawalHandler: handler.NewWithdrawalHandler(withdrawalUC),
		ReportHandler:     handler.NewReportHandler(reportUC),
		HealthHandler:     &handler.HealthHandler{},
		JWTManager:        jwtManager,
		Logger:            zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
