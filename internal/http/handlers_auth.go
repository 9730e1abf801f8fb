package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/domain/model"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
	"github.com/vetdesk/vetdesk/internal/service"
)

// AuthHandlers serves sign-in, registration, external sign-in and sign-out.
type AuthHandlers struct {
	Svc     *service.AuthService
	Cookies CookieConfig
	Logger  *slog.Logger
}

type sessionResponse struct {
	Identity  domainauth.Identity `json:"identity"`
	ExpiresAt time.Time           `json:"expires_at"`
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) startSession(w http.ResponseWriter, r *http.Request, s *service.Session) {
	h.Cookies.setSession(w, r, s.Token)
	w.Header().Set("Cache-Control", "no-store")
}

// Login handles POST /auth/login for staff and customers.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if !DecodeJSON(w, r, &in) {
		return
	}

	sess, err := h.Svc.Login(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.startSession(w, r, sess)
	WriteJSON(w, http.StatusOK, sessionResponse{Identity: sess.Identity, ExpiresAt: sess.ExpiresAt})
}

// Register handles POST /auth/register: customer self-registration followed by sign-in.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCustomerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sess, err := h.Svc.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.startSession(w, r, sess)
	WriteJSON(w, http.StatusCreated, sessionResponse{Identity: sess.Identity, ExpiresAt: sess.ExpiresAt})
}

// Logout handles POST /auth/logout. Tokens are stateless, so signing out only drops the cookie.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.clear(w, r, h.Cookies.sessionName())
	w.WriteHeader(http.StatusNoContent)
}

// Status handles GET /auth/status and reports the caller resolved from the session cookie.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	id := IdentityFromContext(r.Context())
	if id == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"identity":      id,
		"cms":           id.IsStaff(),
	})
}

// OAuthLogin handles GET /auth/oauth/login and redirects to the external provider.
func (h *AuthHandlers) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	res, err := h.Svc.BeginOAuth(r.Context(), redirectURI)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.setOAuth(w, r, oauthCookieParams{State: res.State, Nonce: res.Nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, res.AuthURL, http.StatusFound)
}

// OAuthCallback handles GET /auth/oauth/callback: verifies state, signs the customer in
// and redirects to the path remembered by OAuthLogin.
func (h *AuthHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.Svc.ProviderAvailable() {
		writeServiceError(w, r, service.ErrProviderUnavailable)
		return
	}

	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		h.Cookies.clearOAuth(w, r)
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "oauth_denied", Err: errors.New(providerErr)})
		return
	}

	state := q.Get("state")
	expected := cookieValue(r, oauthStateCookie)
	if state == "" || expected == "" || state != expected {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("sign-in state is missing or does not match"),
		})
		return
	}

	code := q.Get("code")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_request",
			Err:     errors.New("authorization code is required"),
		})
		return
	}

	redirectTo := safeRedirectPath(cookieValue(r, postLoginCookie))
	sess, err := h.Svc.CompleteOAuth(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: cookieValue(r, oauthNonceCookie),
	})
	h.Cookies.clearOAuth(w, r)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			writeServiceError(w, r, err)
			return
		}
		h.logger().WarnContext(r.Context(), "external sign-in failed", slog.Any("error", err))
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "oauth_failed",
			Err:     errors.New("external sign-in failed"),
		})
		return
	}

	h.startSession(w, r, sess)
	http.Redirect(w, r, redirectTo, http.StatusFound)
}
