package middleware

import (
	"net/http"
	"strings"

	"model-catalog-service/pkg/identity"
	"model-catalog-service/pkg/logger"
	"model-catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const principalKey = "principal"

// AuthMiddleware validates the bearer token and stores the verified
// principal in the request context. It rejects the request before any store
// access when the header is missing or malformed.
func AuthMiddleware(verifier *identity.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)
			prometheus.AuthAttemptsCounter.Inc()

			token, ok := bearerToken(c)
			if !ok {
				prometheus.AuthErrorsCounter.Inc()
				log.Warn("Missing or malformed Authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "No token provided. Authorization header must be in format: Bearer <token>",
				})
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				prometheus.AuthErrorsCounter.Inc()
				log.Warn("Token verification failed", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "Invalid or expired token",
				})
			}

			prometheus.AuthSuccessCounter.Inc()
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// OptionalAuthMiddleware attaches a principal when a valid bearer token is
// present but never rejects the request.
func OptionalAuthMiddleware(verifier *identity.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c); ok {
				if principal, err := verifier.Verify(token); err == nil {
					c.Set(principalKey, principal)
				}
			}
			return next(c)
		}
	}
}

// GetPrincipal retrieves the verified principal from the context.
func GetPrincipal(c echo.Context) (*identity.Principal, bool) {
	principal, ok := c.Get(principalKey).(*identity.Principal)
	return principal, ok
}

func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
