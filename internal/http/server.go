// Package http wires the JSON API surface: routing, middleware chain,
// request parsing and response shaping.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/auth"
	"bilancio/internal/cache"
	"bilancio/internal/middleware/cors"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

type Server struct {
	http.Server

	storage   *storage.Repository
	tokens    *auth.TokenIssuer
	ledger    *services.LedgerService
	dashboard *services.DashboardService
	budgets   *services.BudgetService

	limiter      *ratelimit.Limiter
	summaryCache *cache.LRUCache[summaryResponse]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(
	addr string,
	repo *storage.Repository,
	tokens *auth.TokenIssuer,
	ledger *services.LedgerService,
	dashboard *services.DashboardService,
	budgets *services.BudgetService,
	allowedOrigins []string,
) *Server {
	s := &Server{
		storage:          repo,
		tokens:           tokens,
		ledger:           ledger,
		dashboard:        dashboard,
		budgets:          budgets,
		limiter:          ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 30}),
		summaryCache:     cache.NewLRUCache[summaryResponse](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	ips := security.NewIPExtractor()
	limited := s.limiter.Middleware(ips.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeDetail(w, http.StatusTooManyRequests, "too many requests")
	})

	mux := http.NewServeMux()

	// Credential endpoints: rate limited, no bearer auth.
	mux.Handle("POST /api/v1/auth/register", limited(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/v1/auth/login", limited(http.HandlerFunc(s.handleLogin)))

	protected := func(h http.HandlerFunc) http.Handler {
		return s.requireAuth(h)
	}

	mux.Handle("POST /api/v1/transactions", protected(s.handleCreateTransaction))
	mux.Handle("GET /api/v1/transactions", protected(s.handleListTransactions))
	mux.Handle("GET /api/v1/transactions/{id}", protected(s.handleGetTransaction))
	mux.Handle("PUT /api/v1/transactions/{id}", protected(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/v1/transactions/{id}", protected(s.handleDeleteTransaction))

	mux.Handle("GET /api/v1/dashboard/balance", protected(s.handleBalance))
	mux.Handle("GET /api/v1/dashboard/expenses-by-category", protected(s.handleExpensesByCategory))
	mux.Handle("GET /api/v1/dashboard/summary", protected(s.handleSummary))

	mux.Handle("POST /api/v1/budgets", protected(s.handleCreateBudget))
	mux.Handle("GET /api/v1/budgets", protected(s.handleListBudgets))
	mux.Handle("DELETE /api/v1/budgets/{id}", protected(s.handleDeleteBudget))

	mux.Handle("GET /api/v1/alerts", protected(s.handleListAlerts))
	mux.Handle("POST /api/v1/alerts/{id}/read", protected(s.handleMarkAlertRead))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Outer chain: trace first so every response carries a request id in
	// the logs, then security headers and CORS.
	var handler http.Handler = mux
	handler = cors.NewMiddleware(allowedOrigins).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(ips.ExtractClientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.startCacheCleanup()

	return s
}

// Handler exposes the full middleware stack for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports readiness, which for this service means the database
// answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		writeDetail(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
