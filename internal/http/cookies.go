package httpx

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
)

const (
	// DefaultSessionCookie is the cookie that carries the signed session token.
	DefaultSessionCookie = "token"

	oauthStateCookie    = "oauth_state"
	oauthNonceCookie    = "oauth_nonce"
	postLoginCookie     = "post_login_redirect"
	oauthCookieLifetime = 10 * time.Minute
)

// CookieConfig controls how session and OAuth cookies are written.
type CookieConfig struct {
	Name        string // session cookie name; DefaultSessionCookie when empty
	Domain      string // Optional
	ForceSecure bool   // mark cookies Secure even on plain HTTP (production behind a proxy)
}

func (c CookieConfig) sessionName() string {
	if c.Name == "" {
		return DefaultSessionCookie
	}
	return c.Name
}

func (c CookieConfig) secure(r *http.Request) bool {
	return c.ForceSecure || r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func (c CookieConfig) set(w http.ResponseWriter, r *http.Request, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

// clear expires a cookie, mirroring the attributes used when it was set.
func (c CookieConfig) clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// setSession writes the session token with the fixed session lifetime.
func (c CookieConfig) setSession(w http.ResponseWriter, r *http.Request, token string) {
	c.set(w, r, c.sessionName(), token, domainauth.SessionTTL)
}

// oauthCookieParams groups values stored between the OAuth redirect and its callback.
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

func (c CookieConfig) setOAuth(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	c.set(w, r, oauthStateCookie, p.State, oauthCookieLifetime)
	c.set(w, r, oauthNonceCookie, p.Nonce, oauthCookieLifetime)
	c.set(w, r, postLoginCookie, p.RedirectURI, oauthCookieLifetime)
}

func (c CookieConfig) clearOAuth(w http.ResponseWriter, r *http.Request) {
	c.clear(w, r, oauthStateCookie)
	c.clear(w, r, oauthNonceCookie)
	c.clear(w, r, postLoginCookie)
}

func cookieValue(r *http.Request, name string) string {
	if ck, err := r.Cookie(name); err == nil {
		return ck.Value
	}
	return ""
}

// safeRedirectPath returns candidate when it is a local absolute path, "/" otherwise.
// Backslashes and control characters are refused both raw and percent-decoded.
func safeRedirectPath(candidate string) string {
	if candidate == "" || hasRedirectHazard(candidate) {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	if hasRedirectHazard(u.Path) {
		return "/"
	}
	return candidate
}

func hasRedirectHazard(s string) bool {
	if strings.HasPrefix(s, "//") || strings.ContainsRune(s, '\\') {
		return true
	}
	for i := range len(s) {
		if s[i] < 0x20 || s[i] == 0x7f {
			return true
		}
	}
	return false
}
