package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hirewire/hirewire/internal/ai"
	"github.com/hirewire/hirewire/internal/billing"
	"github.com/hirewire/hirewire/internal/cache"
	"github.com/hirewire/hirewire/internal/config"
	"github.com/hirewire/hirewire/internal/db"
	"github.com/hirewire/hirewire/internal/resume"
	"github.com/hirewire/hirewire/internal/server/middleware"
	"github.com/hirewire/hirewire/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	ai          *ai.Client
	cache       *cache.Cache
	resumes     *resume.Store
	resetter    *billing.Resetter
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	validator   *validator.Validate
}

// New creates a new server instance, connecting every dependency.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Server{
		db:        database,
		ai:        ai.NewClient(cfg.AIServiceURL, cfg.AITimeout),
		validator: validator.New(),
	}
	closeAll := func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		s.cache.Close()
		database.Close()
	}

	// Redis is optional. Without it the board is uncached and interview
	// events are not published.
	if cfg.RedisURL != "" {
		s.cache, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	} else {
		log.Println("REDIS_URL not set, board caching and event publishing disabled")
	}

	s.resumes, err = resume.NewStore(cfg.UploadsDir)
	if err != nil {
		closeAll()
		return nil, err
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.resetter = billing.NewResetter(database)
	if err := s.resetter.Start(ctx); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to start usage reset scheduler: %w", err)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // AI calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the route table. Route groups share middleware: auth for
// every /api route past the public ones, plus role gates for the hr and
// applicant groups.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	authOnly := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	hr := func(h http.HandlerFunc) http.Handler {
		return authOnly(middleware.RequireRole(db.RoleHR)(h))
	}
	applicant := func(h http.HandlerFunc) http.Handler {
		return authOnly(middleware.RequireRole(db.RoleApplicant)(h))
	}
	auth := func(h http.HandlerFunc) http.Handler {
		return authOnly(h)
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.Handle("GET /api/auth/me", auth(s.authHandler.Me))
	mux.Handle("PUT /api/auth/me", auth(s.authHandler.UpdateMe))
	mux.Handle("PUT /api/auth/password", auth(s.authHandler.UpdatePassword))

	// Jobs (hiring managers)
	mux.Handle("POST /api/jobs", hr(s.handleCreateJob))
	mux.Handle("GET /api/jobs", hr(s.handleListJobs))
	mux.Handle("GET /api/jobs/{id}", hr(s.handleGetJob))
	mux.Handle("PUT /api/jobs/{id}", hr(s.handleUpdateJob))
	mux.Handle("DELETE /api/jobs/{id}", hr(s.handleDeleteJob))

	// Public job board
	mux.HandleFunc("GET /api/board/jobs", s.handleBoardList)
	mux.HandleFunc("GET /api/board/jobs/{id}", s.handleBoardGet)

	// Candidates (hiring managers)
	mux.Handle("POST /api/jobs/{id}/candidates", hr(s.handleUploadCandidate))
	mux.Handle("POST /api/jobs/{id}/candidates/import", hr(s.handleImportCandidates))
	mux.Handle("GET /api/jobs/{id}/candidates", hr(s.handleListCandidates))
	mux.Handle("GET /api/candidates/{id}", hr(s.handleGetCandidate))
	mux.Handle("DELETE /api/candidates/{id}", hr(s.handleDeleteCandidate))
	mux.Handle("POST /api/candidates/{id}/reanalyze", hr(s.handleReanalyzeCandidate))

	// Applications
	mux.Handle("POST /api/board/jobs/{id}/apply", applicant(s.handleApply))
	mux.Handle("GET /api/applications", applicant(s.handleListMyApplications))
	mux.Handle("GET /api/jobs/{id}/applications", hr(s.handleListJobApplications))
	mux.Handle("PUT /api/applications/{id}/status", hr(s.handleUpdateApplicationStatus))

	// Interviews (hiring managers)
	mux.Handle("POST /api/candidates/{id}/interviews", hr(s.handleCreateInterview))
	mux.Handle("GET /api/candidates/{id}/interviews", hr(s.handleListCandidateInterviews))
	mux.Handle("GET /api/interviews/{id}", hr(s.handleGetInterview))
	mux.Handle("POST /api/interviews/{id}/start", hr(s.handleStartInterview))
	mux.Handle("POST /api/interviews/{id}/messages", hr(s.handleInterviewMessage))
	mux.Handle("POST /api/interviews/{id}/audio", hr(s.handleInterviewAudio))
	mux.Handle("POST /api/interviews/{id}/avatar", hr(s.handleInterviewAvatar))
	mux.Handle("POST /api/interviews/{id}/complete", hr(s.handleCompleteInterview))
	mux.Handle("POST /api/interviews/{id}/cancel", hr(s.handleCancelInterview))

	// Subscription
	mux.Handle("GET /api/subscription", auth(s.handleGetSubscription))
	mux.Handle("PUT /api/subscription/plan", auth(s.handleSetPlan))

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.resetter != nil {
		s.resetter.Stop()
	}
	if err := s.cache.Close(); err != nil {
		log.Printf("Error closing redis: %v", err)
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// writeError writes an error JSON response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// serviceError maps a service-layer error to its HTTP response, logging
// internals without leaking them.
func serviceError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For is deliberately
// ignored because it is client-controlled.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit
// information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	writeJSON(w, http.StatusTooManyRequests, response)
}
