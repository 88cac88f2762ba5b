// Package http provides HTTP middleware and handlers for authentication.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/sentimeter/sentimeter/internal/auth/usecase"
	apperrors "github.com/sentimeter/sentimeter/internal/errors"
	"github.com/sentimeter/sentimeter/internal/httputil"
)

// AuthenticationMiddleware provides authentication via Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Verifies the token and resolves its subject using authUseCase.Authenticate()
// 3. Stores the authenticated user in the request context
// 4. Allows downstream handlers to access the user via GetUser()
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer")
//
// Every authentication failure produces the same 401 response regardless of
// whether the token was missing, malformed, tampered with, or expired. The
// specific reason is only visible in debug logs.
func AuthenticationMiddleware(auth authUseCase.UseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		tokenString := authHeader[len(bearerPrefix):]
		if tokenString == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("user_id", user.ID.String()))

		c.Next()
	}
}
