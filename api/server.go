package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/openalpha/prize-savings/api/handlers"
	"github.com/openalpha/prize-savings/api/middleware"
	"github.com/openalpha/prize-savings/api/types"
	"github.com/openalpha/prize-savings/api/websocket"
)

// Server represents the API server
type Server struct {
	httpServer *http.Server
	hub        *websocket.Hub
	config     *Config
	mockMode   bool

	service     types.PoolService
	poolHandler *handlers.PoolHandler

	rateLimiter *middleware.RateLimiter
}

// Config contains server configuration
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MockMode         bool
	DisableRateLimit bool // For testing purposes
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		MockMode:     false,
	}
}

// NewServer creates a new API server backed by the mock service
func NewServer(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	config.MockMode = true
	return NewServerWithService(config, NewMockService())
}

// NewServerWithService creates a new API server with a custom pool service
func NewServerWithService(config *Config, service types.PoolService) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Server{
		config:      config,
		hub:         websocket.NewHub(websocket.DefaultHubConfig()),
		mockMode:    config.MockMode,
		service:     service,
		rateLimiter: middleware.NewRateLimiter(middleware.DefaultRateLimitConfig()),
	}
	s.poolHandler = handlers.NewPoolHandler(service)

	return s
}

// Hub returns the websocket hub for broadcasting updates
func (s *Server) Hub() *websocket.Hub {
	return s.hub
}

// Start starts the API server. Blocks until the listener fails or the server
// is stopped.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Health check (support both /health and /v1/health for compatibility)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/health", s.handleHealth)

	// Pool endpoints (read-only)
	mux.HandleFunc("/v1/pools", s.poolHandler.HandlePools)
	mux.HandleFunc("/v1/pools/", s.poolHandler.HandlePool)

	// User endpoints
	mux.HandleFunc("/v1/users/", s.poolHandler.HandleUserPools)

	// WebSocket
	mux.HandleFunc("/ws", s.hub.ServeWS)

	// Apply middleware chain: CORS -> RateLimit -> Handler
	var handler http.Handler
	if s.config.DisableRateLimit {
		handler = corsMiddleware(mux)
	} else {
		handler = corsMiddleware(
			middleware.RateLimitMiddleware(s.rateLimiter)(mux),
		)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go s.hub.Run()
	go s.startPoolBroadcaster()

	log.Printf("API server starting on %s (mock mode: %v)", addr, s.mockMode)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.httpServer.Shutdown(ctx)
}

// startPoolBroadcaster polls the pool service and feeds snapshots to the
// websocket hub. The hub flushes them to subscribers on its own interval.
func (s *Server) startPoolBroadcaster() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		pools, err := s.service.GetPools()
		if err != nil {
			continue
		}
		now := time.Now().Unix()
		for _, pool := range pools {
			s.hub.UpdatePool(pool.PoolID, &websocket.PoolMessage{
				PoolID:             pool.PoolID,
				Phase:              pool.Phase,
				SharePrice:         pool.SharePrice,
				TotalShares:        pool.TotalShares,
				AllocatedPrincipal: pool.AllocatedPrincipal,
				PrizeBucket:        pool.AllocatedPrizeYield,
				ParticipantCount:   pool.ParticipantCount,
				ActiveRoundID:      pool.ActiveRoundID,
				RoundTargetEndTime: pool.RoundTargetEndTime,
				Timestamp:          now,
			})
		}
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	mode := "chain"
	if s.mockMode {
		mode = "mock"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"mode":      mode,
		"clients":   strconv.Itoa(s.hub.GetClientCount()),
	})
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
