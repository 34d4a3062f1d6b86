package profiles

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hxabcd/sms-code-sync/internal/domain"
	"github.com/hxabcd/sms-code-sync/internal/httputil"
	"github.com/hxabcd/sms-code-sync/internal/message"
	"github.com/hxabcd/sms-code-sync/internal/profile"
)

// Handler handles profile, session and code endpoints.
type Handler struct {
	logger       *slog.Logger
	registry     *profile.Registry
	messages     *message.Service
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new profiles handler.
func NewHandler(logger *slog.Logger, registry *profile.Registry, messages *message.Service) *Handler {
	return &Handler{
		logger:       logger,
		registry:     registry,
		messages:     messages,
		cookieConfig: httputil.DefaultCookieConfig(),
	}
}

// List handles GET /api/profiles
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.registry.Names())
}

// SessionResponse represents a session status response.
type SessionResponse struct {
	Status    string `json:"status"`
	Verified  bool   `json:"verified"`
	UUID      string `json:"uuid"`
	Remaining int    `json:"remaining"`
}

// CheckSession handles GET /api/profiles/{name}/session
func (h *Handler) CheckSession(w http.ResponseWriter, r *http.Request) {
	p, ok := h.registry.Get(chi.URLParam(r, "name"))
	if !ok {
		httputil.Error(w, http.StatusNotFound, "profile not found")
		return
	}

	clientID := httputil.ClientID(r)
	verified, remaining := p.IsVerified(clientID)

	status := "Not verified"
	if verified {
		status = "Verified"
	}

	httputil.SetClientIDCookie(w, clientID, h.cookieConfig)
	httputil.JSON(w, http.StatusOK, SessionResponse{
		Status:    status,
		Verified:  verified,
		UUID:      clientID,
		Remaining: remaining,
	})
}

// VerifyRequest represents a TOTP verification request.
type VerifyRequest struct {
	Token string `json:"token"`
}

// VerifyResponse represents a successful verification response.
type VerifyResponse struct {
	Message   string `json:"message"`
	Remaining int    `json:"remaining"`
}

// VerifySession handles POST /api/profiles/{name}/session
func (h *Handler) VerifySession(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := h.registry.Get(name)
	if !ok {
		httputil.Error(w, http.StatusNotFound, "profile not found")
		return
	}

	clientID := httputil.ClientID(r)

	// Within the trust window there is no need to re-verify.
	if verified, remaining := p.IsVerified(clientID); verified {
		httputil.JSON(w, http.StatusOK, VerifyResponse{
			Message:   "Already verified",
			Remaining: remaining,
		})
		return
	}

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" {
		httputil.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	if !p.Verify(clientID, req.Token) {
		h.logger.Warn("invalid verification attempt", "profile", name)
		httputil.Error(w, http.StatusForbidden, "invalid token")
		return
	}

	h.logger.Info("session verified", "profile", name)
	httputil.SetClientIDCookie(w, clientID, h.cookieConfig)
	httputil.JSON(w, http.StatusOK, VerifyResponse{
		Message:   "Verified successfully",
		Remaining: p.Window(),
	})
}

// Logout handles DELETE /api/profiles/{name}/session
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := h.registry.Get(name)
	if !ok {
		httputil.Error(w, http.StatusNotFound, "profile not found")
		return
	}

	p.Logout(httputil.ClientID(r))
	h.logger.Info("session logged out", "profile", name)
	httputil.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// CodesResponse represents the stored code history.
type CodesResponse struct {
	Codes []domain.CodeRecord `json:"codes"`
}

// GetCodes handles GET /api/profiles/{name}/codes
func (h *Handler) GetCodes(w http.ResponseWriter, r *http.Request) {
	p, ok := h.registry.Get(chi.URLParam(r, "name"))
	if !ok {
		httputil.Error(w, http.StatusNotFound, "profile not found")
		return
	}

	if verified, _ := p.IsVerified(httputil.ClientID(r)); !verified {
		httputil.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	codes := p.History()
	if codes == nil {
		codes = []domain.CodeRecord{}
	}
	httputil.JSON(w, http.StatusOK, CodesResponse{Codes: codes})
}

// ClearCodes handles DELETE /api/profiles/{name}/codes
func (h *Handler) ClearCodes(w http.ResponseWriter, r *http.Request) {
	p, ok := h.registry.Get(chi.URLParam(r, "name"))
	if !ok {
		httputil.Error(w, http.StatusNotFound, "profile not found")
		return
	}

	if verified, _ := p.IsVerified(httputil.ClientID(r)); !verified {
		httputil.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	p.ClearHistory()
	httputil.JSON(w, http.StatusOK, map[string]string{"message": "Codes cleared"})
}

// SubmitResponse represents a successful message submission.
type SubmitResponse struct {
	Message string            `json:"message"`
	Data    domain.CodeRecord `json:"data"`
}

// SubmitMessage handles POST /api/profiles/{name}/messages
// The route is gated by the API key middleware; by the time this runs the
// caller is a trusted forwarding agent.
func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req message.Data
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		httputil.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	p, ok := h.registry.Get(name)
	if !ok {
		httputil.Error(w, http.StatusNotFound, "profile not found")
		return
	}

	rec, err := h.messages.Process(p, req)
	if err != nil {
		if errors.Is(err, domain.ErrNoCodeFound) {
			// Expected for messages that are not verification codes.
			httputil.Error(w, http.StatusBadRequest, "no code found in the message")
			return
		}
		h.logger.Error("failed to process message", "profile", name, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	httputil.JSON(w, http.StatusOK, SubmitResponse{Message: "Processed", Data: rec})
}
