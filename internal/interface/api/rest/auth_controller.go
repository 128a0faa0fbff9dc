package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"files-manager-api/internal/application/ports"
	"files-manager-api/internal/interface/api/rest/dto/user"
	"files-manager-api/internal/interface/api/rest/middleware"
)

type AuthController struct {
	logger      *zap.Logger
	authService ports.AuthService
}

func NewAuthController(
	r *gin.Engine,
	logger *zap.Logger,
	authService ports.AuthService,
) *AuthController {
	ac := &AuthController{
		logger:      logger,
		authService: authService,
	}

	r.GET(RouteConnect, ac.ConnectHandler)
	r.GET(RouteDisconnect, middleware.RequireSession(authService, logger), ac.DisconnectHandler)

	return ac
}

// ConnectHandler exchanges HTTP Basic credentials for a session token.
func (ac *AuthController) ConnectHandler(c *gin.Context) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	token, err := ac.authService.Login(c.Request.Context(), email, password)
	if err != nil {
		respondError(c, ac.logger, "Login()", err)
		return
	}

	c.JSON(http.StatusOK, user.Token{Token: token})
}

func (ac *AuthController) DisconnectHandler(c *gin.Context) {
	token := c.GetString(middleware.CtxToken)
	if err := ac.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, ac.logger, "Logout()", err)
		return
	}

	c.Status(http.StatusNoContent)
}
