package httpserver

import (
	"net/http"

	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/services"
)

func (s *Server) tokenCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
	}
}

func (s *Server) setAuthCookies(w http.ResponseWriter, pair services.TokenPair) {
	http.SetCookie(w, s.tokenCookie(common.AccessTokenCookieName, pair.AccessToken))
	http.SetCookie(w, s.tokenCookie(common.RefreshTokenCookieName, pair.RefreshToken))
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		c := s.tokenCookie(name, "")
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

// cookieValue returns the named cookie's value, "" when absent.
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
