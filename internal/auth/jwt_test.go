package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthedEcho() *echo.Echo {
	e := echo.New()
	e.Use(JWTMiddleware(testSecret, nil))
	e.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, UserIDFromContext(c))
	})
	return e
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	t.Parallel()
	e := newAuthedEcho()
	token := signToken(t, testSecret, jwt.MapClaims{"user_id": "user-42"})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", rec.Body.String())
}

func TestJWTMiddleware_SubjectFallback(t *testing.T) {
	t.Parallel()
	e := newAuthedEcho()
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "subject-7"})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "subject-7", rec.Body.String())
}

// No token is not an error: the request proceeds anonymously.
func TestJWTMiddleware_MissingTokenIsAnonymous(t *testing.T) {
	t.Parallel()
	e := newAuthedEcho()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJWTMiddleware_InvalidTokenRejected(t *testing.T) {
	t.Parallel()
	e := newAuthedEcho()
	token := signToken(t, "wrong-secret", jwt.MapClaims{"user_id": "user-42"})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_ExpiredTokenRejected(t *testing.T) {
	t.Parallel()
	e := newAuthedEcho()
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "user-42",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDFromContext_NoToken(t *testing.T) {
	t.Parallel()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, UserIDFromContext(c))
}
