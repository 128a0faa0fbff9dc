package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"files-manager-api/internal/application/ports"
	"files-manager-api/internal/interface/api/rest/dto/user"
	"files-manager-api/internal/interface/api/rest/middleware"
)

type UserController struct {
	userService ports.UserService
	logger      *zap.Logger
}

func NewUserController(
	r *gin.Engine,
	userService ports.UserService,
	authService ports.AuthService,
	logger *zap.Logger,
) *UserController {
	uc := &UserController{
		userService: userService,
		logger:      logger,
	}

	r.POST(RouteUsers, uc.CreateUserHandler)
	r.GET(RouteMe, middleware.RequireSession(authService, logger), uc.GetMeHandler)

	return uc
}

func (uc *UserController) CreateUserHandler(c *gin.Context) {
	var req user.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	u, err := uc.userService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, uc.logger, "Register()", err)
		return
	}

	c.JSON(http.StatusCreated, user.ToResponseUser(*u))
}

func (uc *UserController) GetMeHandler(c *gin.Context) {
	u, err := uc.userService.FindUserByID(c.Request.Context(), middleware.RequesterID(c))
	if err != nil {
		// a live session for a vanished user is treated as no session
		respondError(c, uc.logger, "FindUserByID()", unauthorizedIfNotFound(err))
		return
	}

	c.JSON(http.StatusOK, user.ToResponseUser(*u))
}
