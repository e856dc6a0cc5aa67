package controller

import (
	"palearn_backend/internal/service"
	"palearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterRequest true "registration payload"
// @Success 201 {object} util.Response
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user, err := ctrl.authService.Register(req)
	if err == util.ErrEmailRegistered {
		util.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Created(c, user)
}

// Login godoc
// @Summary Log in and receive a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginRequest true "credentials"
// @Success 200 {object} util.Response
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	token, user, err := ctrl.authService.Login(req)
	if err == util.ErrInvalidCredentials {
		util.Unauthorized(c)
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}
