package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HTTPServer serves health checks, status and the Telegram webhook
type HTTPServer struct {
	bot         *Bot
	webhookMode bool
	ctx         context.Context // parent of webhook update handling
}

// NewHTTPServer creates the HTTP handlers of the bot
func NewHTTPServer(ctx context.Context, bot *Bot, webhookMode bool) *HTTPServer {
	return &HTTPServer{
		bot:         bot,
		webhookMode: webhookMode,
		ctx:         ctx,
	}
}

// StatusResponse is the body of GET /status
type StatusResponse struct {
	Mode          string `json:"mode"`
	KnownAccounts int    `json:"known_accounts"`
	LiveSessions  int    `json:"live_sessions"`
}

// RegisterRoutes registers the bot routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/status", hs.handleStatus)
	mux.HandleFunc("/", hs.handleRoot)

	// Webhook endpoint (only used in webhook mode)
	if hs.webhookMode {
		mux.HandleFunc("/telegram-webhook", hs.handleWebhook)
	}
}

func (hs *HTTPServer) mode() string {
	if hs.webhookMode {
		return "webhook"
	}
	return "polling"
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (hs *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Broadcast Bot is running (mode: %s)", hs.mode())
}

// handleStatus reports directory and session counters
func (hs *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(StatusResponse{
		Mode:          hs.mode(),
		KnownAccounts: hs.bot.KnownAccounts(),
		LiveSessions:  hs.bot.LiveSessions(),
	}); err != nil {
		hs.bot.logger.Warn("Failed to encode status", zap.Error(err))
	}
}

// handleWebhook accepts an update pushed by Telegram
func (hs *HTTPServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		hs.bot.logger.Warn("Error decoding webhook update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Process update in background to respond quickly to Telegram.
	// Per-operator slots keep transitions of one operator serialized.
	go hs.bot.HandleUpdate(hs.ctx, update)

	w.WriteHeader(http.StatusOK)
}
