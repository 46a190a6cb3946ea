package handlers

import (
	"net/http"

	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/database"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Providers       []ProviderInfo `json:"providers"`
	ActiveProvider  string         `json:"activeProvider"`
	Storage         string         `json:"storage"`
	MaxPages        int            `json:"maxPages"`
	SnapThreshold   float64        `json:"snapThreshold"`
	HistoryCapacity int            `json:"historyCapacity"`
}

// ProviderInfo represents information about an AI provider
type ProviderInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Get returns the editing configuration the client needs
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	providers := []ProviderInfo{
		{Name: "openai", Available: h.config.AI.OpenAIToken != ""},
		{Name: "gemini", Available: h.config.AI.GeminiKey != ""},
		{Name: "ollama", Available: true},   // local
		{Name: "llamacpp", Available: true}, // local
	}

	respondJSON(w, http.StatusOK, ConfigResponse{
		Providers:       providers,
		ActiveProvider:  h.config.AI.Provider,
		Storage:         database.Backend(),
		MaxPages:        h.config.Composer.MaxPages,
		SnapThreshold:   h.config.Editor.SnapThreshold,
		HistoryCapacity: h.config.Editor.HistoryCapacity,
	})
}
