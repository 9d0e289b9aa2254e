// Package http exposes the REST API: session auth, expense and income CRUD
// with the shared list pipeline, balance, exports and the admin surface.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/storage"
)

type Server struct {
	http.Server

	repo       *storage.Repository
	tokens     *auth.TokenManager
	exporter   export.Writer
	events     *amqp.Client
	logger     *log.Logger
	structured *log.StructuredLogger

	limiter  *ratelimit.Limiter
	detector *security.Detector

	statsCache   *cache.LRUCache[core.AdminStats]
	cacheManager *cache.Manager

	apiKey     string
	production bool

	shutdownOnce sync.Once
}

// NewServer wires routes and the middleware chain, returning a server ready
// for ListenAndServe. The AMQP client may be nil; record events are then
// simply not published.
func NewServer(cfg *config.Config, repo *storage.Repository, tokens *auth.TokenManager, exporter export.Writer, events *amqp.Client, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		repo:       repo,
		tokens:     tokens,
		exporter:   exporter,
		events:     events,
		logger:     logger.WithComponent(log.ComponentHTTP),
		structured: log.NewStructuredLogger(logger),
		detector:   security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			CleanupInterval:   5 * time.Minute,
		}),
		statsCache:   cache.NewLRUCache[core.AdminStats](1, 30*time.Second),
		cacheManager: cache.NewManager(),
		apiKey:       cfg.APIKey,
		production:   cfg.Production(),
	}

	s.cacheManager.Register(s.statsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("/", s.handleNotFound)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Generated spreadsheets are served back from the export directory when
	// the xlsx backend is active; the sheets backend returns remote URLs.
	if cfg.ExportBackend == export.XLSXBackend.String() {
		files := http.StripPrefix("/exports/", http.FileServer(http.Dir(cfg.ExportDir)))
		mux.Handle("GET /exports/", files)
	}

	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogIn)
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogOut)
	mux.HandleFunc("GET /api/v1/auth/profile", s.withSession(s.handleProfile))

	mux.HandleFunc("GET /api/v1/expenses", s.withSession(s.handleListExpenses))
	mux.HandleFunc("POST /api/v1/expenses", s.withSession(s.handleCreateExpense))
	mux.HandleFunc("GET /api/v1/expenses/recurring", s.withSession(s.handleRecurringExpenses))
	mux.HandleFunc("GET /api/v1/expenses/download", s.withSession(s.handleDownloadExpenses))
	mux.HandleFunc("GET /api/v1/expenses/search", s.withSession(s.handleSearchExpenses))
	mux.HandleFunc("GET /api/v1/expenses/{id}", s.withSession(s.handleGetExpense))
	mux.HandleFunc("PUT /api/v1/expenses/{id}", s.withSession(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/v1/expenses/{id}", s.withSession(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/v1/incomes", s.withSession(s.handleListIncomes))
	mux.HandleFunc("POST /api/v1/incomes", s.withSession(s.handleCreateIncome))
	mux.HandleFunc("GET /api/v1/incomes/recurring", s.withSession(s.handleRecurringIncomes))
	mux.HandleFunc("GET /api/v1/incomes/download", s.withSession(s.handleDownloadIncomes))
	mux.HandleFunc("GET /api/v1/incomes/balance", s.withSession(s.handleBalance))
	mux.HandleFunc("GET /api/v1/incomes/search", s.withSession(s.handleSearchIncomes))
	mux.HandleFunc("GET /api/v1/incomes/{id}", s.withSession(s.handleGetIncome))
	mux.HandleFunc("PUT /api/v1/incomes/{id}", s.withSession(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /api/v1/incomes/{id}", s.withSession(s.handleDeleteIncome))

	mux.HandleFunc("GET /api/v1/admin/users", s.withAdmin(s.handleListUsers))
	mux.HandleFunc("GET /api/v1/admin/users/search", s.withAdmin(s.handleSearchUsers))
	mux.HandleFunc("GET /api/v1/admin/stats", s.withAdmin(s.withAPIKey(s.handleAdminStats)))
	mux.HandleFunc("GET /api/v1/admin/users/{id}", s.withAdmin(s.handleGetUser))
	mux.HandleFunc("PUT /api/v1/admin/users/{id}", s.withAdmin(s.handleUpdateUser))
	mux.HandleFunc("DELETE /api/v1/admin/users/{id}", s.withAdmin(s.handleDeleteUser))
	mux.HandleFunc("PUT /api/v1/admin/users/{id}/role", s.withAdmin(s.handleToggleUserRole))

	s.Server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s.middlewareChain(mux),
	}

	return s
}

// middlewareChain wraps the mux with tracing, security headers, suspicious
// request logging and rate limiting, outermost first.
func (s *Server) middlewareChain(next http.Handler) http.Handler {
	headers := security.NewHeadersMiddleware(security.APIHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		w.Header().Set("Retry-After", "60")
		fail(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})(next)

	detected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}
		limited.ServeHTTP(w, r)
	})

	return tracer.Middleware(headers.Middleware(detected))
}

// Shutdown stops the background cleanup goroutines and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	succeed(w, http.StatusOK, "hello world", nil)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	fail(w, http.StatusNotFound, "Route not found")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
