// Package common contains shared constants, sentinel errors and small
// helpers used across the backend.
package common

// Cookie names carrying the session tokens. The access token cookie is also
// what the auth middleware reads first, before the Authorization header.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// AuthorizationHeaderName and BearerPrefix describe the header fallback for
// clients that cannot keep cookies.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
)
