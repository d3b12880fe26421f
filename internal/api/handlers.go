package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"sola/internal/agents"
	"sola/internal/services/auth"
	"sola/internal/services/chat"
	usagegate "sola/internal/services/usage"
	"sola/internal/tools"
	pkgauth "sola/pkg/auth"
	"sola/pkg/errors"
	"sola/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

// Handlers bundles the REST endpoints under /v1
type Handlers struct {
	auth       *auth.Service
	chat       *chat.Service
	gate       *usagegate.Service
	agents     *agents.Registry
	dispatcher *tools.Dispatcher
	log        *logger.Logger
}

// NewHandlers creates the API handler set
func NewHandlers(authSvc *auth.Service, chatSvc *chat.Service, gate *usagegate.Service, registry *agents.Registry, dispatcher *tools.Dispatcher) *Handlers {
	return &Handlers{
		auth:       authSvc,
		chat:       chatSvc,
		gate:       gate,
		agents:     registry,
		dispatcher: dispatcher,
		log:        logger.Get().With("component", "api"),
	}
}

// Register mounts all /v1 routes on the mux
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/auth/login", h.handleLogin)
	mux.HandleFunc("/v1/agents", h.requireAuth(h.handleAgents))
	mux.HandleFunc("/v1/usage", h.requireAuth(h.handleUsage))
	mux.HandleFunc("/v1/usage/history", h.requireAuth(h.handleUsageHistory))
	mux.HandleFunc("/v1/dispatch", h.requireAuth(h.handleDispatch))
	mux.HandleFunc("/v1/chat", h.requireAuth(h.handleChat))
	mux.HandleFunc("/v1/stream", h.requireAuth(h.handleStream))
}

type loginRequest struct {
	Wallet string `json:"wallet"`
}

type loginResponse struct {
	Token  string    `json:"token"`
	UserID uuid.UUID `json:"user_id"`
	Wallet string    `json:"wallet"`
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, u, err := h.auth.Login(r.Context(), req.Wallet)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:  token,
		UserID: u.ID,
		Wallet: u.WalletAddress,
	})
}

func (h *Handlers) handleAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"agents": h.agents.List()})
}

type usageResponse struct {
	TierLevel    int     `json:"tier_level"`
	TierName     string  `json:"tier_name"`
	LimitUSD     string  `json:"limit_usd"`
	ConsumedUSD  string  `json:"consumed_usd"`
	RemainingUSD string  `json:"remaining_usd"`
	PercentUsed  float64 `json:"percent_used"`
	Allowed      bool    `json:"allowed"`
	Reason       string  `json:"reason,omitempty"`
	WindowStart  string  `json:"window_start"`
	WindowOpened string  `json:"window_opened"`
}

func (h *Handlers) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	claims := claimsFrom(r.Context())
	status, err := h.gate.CheckAllowance(r.Context(), claims.UserID, claims.Wallet)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usageResponse{
		TierLevel:    status.TierLevel,
		TierName:     status.TierName,
		LimitUSD:     status.LimitUSD.StringFixed(2),
		ConsumedUSD:  status.ConsumedUSD.StringFixed(4),
		RemainingUSD: status.RemainingUSD.StringFixed(4),
		PercentUsed:  status.PercentUsed,
		Allowed:      status.Allowed,
		Reason:       status.Reason,
		WindowStart:  status.WindowStart.Format(time.RFC3339),
		WindowOpened: humanize.Time(status.WindowStart),
	})
}

type usageHistoryEntry struct {
	SessionID        uuid.UUID `json:"session_id"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	PromptTokens     uint32    `json:"prompt_tokens"`
	CompletionTokens uint32    `json:"completion_tokens"`
	CostUSD          string    `json:"cost_usd"`
	CreatedAt        string    `json:"created_at"`
}

func (h *Handlers) handleUsageHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	claims := claimsFrom(r.Context())
	records, err := h.gate.History(r.Context(), claims.UserID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	entries := make([]usageHistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, usageHistoryEntry{
			SessionID:        rec.SessionID,
			Provider:         rec.Provider,
			Model:            rec.Model,
			PromptTokens:     rec.PromptTokens,
			CompletionTokens: rec.CompletionTokens,
			CostUSD:          rec.CostUSD.StringFixed(6),
			CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": entries})
}

type dispatchRequest struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

func (h *Handlers) handleDispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Tool == "" {
		writeError(w, http.StatusBadRequest, "tool is required")
		return
	}

	// Dispatch itself never fails; errors come back inside the result
	result := h.dispatcher.Dispatch(r.Context(), req.Tool, req.Arguments)
	writeJSON(w, http.StatusOK, result)
}

type chatRequest struct {
	SessionID uuid.UUID `json:"session_id,omitempty"`
	Agent     string    `json:"agent,omitempty"`
	Message   string    `json:"message"`
}

func (h *Handlers) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	claims := claimsFrom(r.Context())
	out, err := h.chat.Chat(r.Context(), chat.Input{
		UserID:    claims.UserID,
		Wallet:    claims.Wallet,
		SessionID: req.SessionID,
		AgentSlug: req.Agent,
		Message:   req.Message,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// requireAuth validates the bearer token and stashes its claims in the
// request context
func (h *Handlers) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.auth.Authenticate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

func claimsFrom(ctx context.Context) *pkgauth.Claims {
	claims, _ := ctx.Value(claimsKey).(*pkgauth.Claims)
	return claims
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrInvalidAddress), errors.Is(err, errors.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, errors.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errors.ErrUsageExceeded):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, errors.ErrUnknownBalance), errors.Is(err, errors.ErrUnavailable),
		errors.Is(err, errors.ErrRPCUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, errors.ErrRateLimitExceeded):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		h.log.Errorf("Unhandled API error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
