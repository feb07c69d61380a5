package auth

import (
	"net/http"
	"strings"
)

const (
	accessTokenCookie = "access_token"
	bearerPrefix      = "Bearer "
)

// ExtractAccessToken pulls the JWT from the access_token cookie, or
// from the Authorization header when no cookie is set.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimPrefix(h, bearerPrefix)
	}

	return ""
}
