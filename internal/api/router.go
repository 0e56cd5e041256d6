// Package api exposes the terminal's HTTP surface: manual orders, the
// scalper quick-order endpoint, voice order intake, audit log reads, and
// the live order outcome stream.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"tradeterm/internal/execution"
	"tradeterm/internal/logger"
	"tradeterm/internal/markethours"
	"tradeterm/internal/metrics"
	"tradeterm/internal/model"
	"tradeterm/internal/stream"
	"tradeterm/internal/voice"
)

// Server holds the handlers' collaborators.
type Server struct {
	pipeline *execution.Pipeline
	journal  *execution.Journal
	voice    *voice.Service
	settings *voice.Settings
	hub      *stream.Hub
	metrics  *metrics.Metrics // may be nil
	log      *slog.Logger
}

// Config carries the server's collaborators.
type Config struct {
	Pipeline *execution.Pipeline
	Journal  *execution.Journal
	Voice    *voice.Service
	Settings *voice.Settings
	Hub      *stream.Hub
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// NewServer creates the API server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pipeline: cfg.Pipeline,
		journal:  cfg.Journal,
		voice:    cfg.Voice,
		settings: cfg.Settings,
		hub:      cfg.Hub,
		metrics:  cfg.Metrics,
		log:      logger,
	}
}

// Routes registers all HTTP routes and returns the handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/orders", s.handlePlaceOrder)
	mux.HandleFunc("/api/scalper/order", s.handleScalperOrder)
	mux.HandleFunc("/api/voice/transcribe", s.handleVoiceOrder)
	mux.HandleFunc("/api/orders/logs", s.handleOrderLogs)
	mux.HandleFunc("/api/meta/order-constants", s.handleOrderConstants)
	mux.HandleFunc("/api/meta/market-status", s.handleMarketStatus)

	if s.hub != nil {
		mux.HandleFunc("/ws/orders", s.hub.HandleWS)
	}

	return s.withRequestID(mux)
}

// withRequestID tags every request with a UUID for log correlation.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = logger.NewRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := logger.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Client-ID, X-Request-ID")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	SetCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	SetCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"trading_day": markethours.IsTradingDay(now),
		"segments":    markethours.Statuses(now),
	})
}

func (s *Server) handleOrderConstants(w http.ResponseWriter, r *http.Request) {
	SetCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sides":       []string{model.SideBuy, model.SideSell},
		"varieties":   []string{model.VarietyNormal, model.VarietyStopLoss, model.VarietyAMO},
		"order_types": []string{model.OrderTypeMarket, model.OrderTypeLimit, model.OrderTypeSLM, model.OrderTypeSLLimit},
		"products":    []string{model.ProductDelivery, model.ProductIntraday, model.ProductCarryForward},
		"exchanges": map[string][]string{
			"equity":     model.EquitySegments,
			"derivative": model.DerivativeSegments,
		},
	})
}
