// Package auth verifies bearer tokens on the REST API. Tokens are issued
// by the identity provider, not by this service.
package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	claimSubject = "sub"
	claimUserID  = "user_id"
)

// JWTMiddleware returns a JWT auth middleware configured for HS256 tokens.
// ContinueOnIgnoredError lets endpoints that accept anonymous sessions run
// without a token; they resolve identity via UserIDFromContext themselves.
func JWTMiddleware(secret string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:             []byte(secret),
		SigningMethod:          "HS256",
		TokenLookup:            "header:Authorization:Bearer ",
		Skipper:                skipper,
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			// Missing token: proceed anonymously. Invalid token: reject.
			if strings.Contains(err.Error(), "missing") {
				return nil
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		},
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	})
}

// UserIDFromContext extracts the authenticated user id from JWT claims,
// or "" when the request carried no valid token.
func UserIDFromContext(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if userID := claimString(claims, claimUserID); userID != "" {
		return userID
	}
	return claimString(claims, claimSubject)
}

func claimString(claims jwt.MapClaims, key string) string {
	v, ok := claims[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
