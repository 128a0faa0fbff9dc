package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"files-manager-api/internal/application/ports"
	"files-manager-api/internal/application/services"
	"files-manager-api/internal/domain/user"
)

const (
	HeaderToken = "X-Token"

	CtxUserID = "userID"
	CtxToken  = "token"
)

// RequireSession rejects requests without a live session token.
func RequireSession(auth ports.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return session(auth, logger, true)
}

// OptionalSession resolves a token when one is sent and falls back to the
// anonymous requester otherwise.
func OptionalSession(auth ports.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return session(auth, logger, false)
}

func session(auth ports.AuthService, logger *zap.Logger, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderToken)
		if token == "" && !required {
			c.Set(CtxUserID, user.Anonymous)
			c.Next()
			return
		}

		id, err := auth.Resolve(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrUnauthorized):
			if required {
				c.AbortWithStatusJSON(
					http.StatusUnauthorized,
					gin.H{"error": "Unauthorized"},
				)
				return
			}
			id = user.Anonymous
		default:
			logger.Error("session resolve error", zap.Error(err))
			c.AbortWithStatusJSON(
				http.StatusInternalServerError,
				gin.H{"error": "internal error"},
			)
			return
		}

		c.Set(CtxUserID, id)
		c.Set(CtxToken, token)

		c.Next()
	}
}

// RequesterID returns the id stored by the session middleware.
func RequesterID(c *gin.Context) user.ID {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return user.Anonymous
	}
	id, _ := v.(user.ID)
	return id
}
