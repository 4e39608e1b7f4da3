package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"discordbridge/core/log"
)

type HealthResponse struct {
	Status            string `json:"status"`
	DiscordConnected  bool   `json:"discordConnected"`
	WebhookConfigured bool   `json:"webhookConfigured"`
}

type HealthHandler struct {
	discordConnected  func() bool
	webhookConfigured bool
	gatherer          prometheus.Gatherer
}

// NewHealthHandler creates the health and metrics endpoints.
// discordConnected is polled on every request; a nil gatherer serves the default prometheus registry.
func NewHealthHandler(discordConnected func() bool, webhookConfigured bool, gatherer prometheus.Gatherer) *HealthHandler {
	if discordConnected == nil {
		discordConnected = func() bool { return false }
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &HealthHandler{
		discordConnected:  discordConnected,
		webhookConfigured: webhookConfigured,
		gatherer:          gatherer,
	}
}

func (h *HealthHandler) SetupEndpoints(router *mux.Router) {
	log.Info("📋 Registering health endpoints")
	router.HandleFunc("/health", h.HandleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods("GET")
}

// HandleHealth always answers 200 while the process runs; the body reports dependency state
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:            "ok",
		DiscordConnected:  h.discordConnected(),
		WebhookConfigured: h.webhookConfigured,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("❌ Failed to write health check response", "error", err)
	}
}
