package ipc

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	// TokenHeader carries the session token in headless mode
	TokenHeader = "X-Folio-Token"

	// TokenQueryParam lets a browser exchange the printed token for a cookie
	TokenQueryParam = "token"

	tokenCookieName = "folio_token"
	tokenLen        = 32
)

// RequestID tags every request with a UUID, echoed in X-Request-Id
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// RequestLogger logs one line per command
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("command", commandName(v.URI)),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.Warn("command failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Debug("command", fields...)
			return nil
		},
	})
}

// commandName strips the route prefix, e.g. /ipc/fs/stat -> fs/stat
func commandName(uri string) string {
	uri, _, _ = strings.Cut(uri, "?")
	return strings.TrimPrefix(uri, RoutePrefix+"/")
}

// TokenAuth guards command routes with a random per-process token. The
// desktop shell does not use it since its handler is only reachable from
// the webview.
type TokenAuth struct {
	token string
}

// NewTokenAuth creates an authenticator with a fresh token
func NewTokenAuth() (*TokenAuth, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	return &TokenAuth{token: token}, nil
}

// generateToken creates a new cryptographically secure token
func generateToken() (string, error) {
	bytes := make([]byte, tokenLen)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Token returns the token clients must present
func (a *TokenAuth) Token() string {
	return a.token
}

// Valid reports whether candidate matches the token
func (a *TokenAuth) Valid(candidate string) bool {
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.token)) == 1
}

// Middleware rejects requests without the token in the X-Folio-Token
// header or the session cookie.
func (a *TokenAuth) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if a.Valid(c.Request().Header.Get(TokenHeader)) {
				return next(c)
			}
			if cookie, err := c.Cookie(tokenCookieName); err == nil && a.Valid(cookie.Value) {
				return next(c)
			}
			return NewForbiddenError("invalid or missing token")
		}
	}
}

// CookieExchange sets the session cookie when a page is requested with a
// valid ?token= query, so a browser opened on the printed URL can call
// commands with plain fetch.
func (a *TokenAuth) CookieExchange() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if a.Valid(c.QueryParam(TokenQueryParam)) {
				c.SetCookie(&http.Cookie{
					Name:     tokenCookieName,
					Value:    a.token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteStrictMode,
				})
			}
			return next(c)
		}
	}
}
