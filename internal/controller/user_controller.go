package controller

import (
	"palearn_backend/internal/service"
	"palearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// Profile godoc
// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /users/profile [get]
func (ctrl *UserController) Profile(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	user, err := ctrl.userService.Profile(claims.UserID)
	if err == util.ErrUserNotFound {
		util.NotFound(c, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, user)
}

// UpdateProfile godoc
// @Summary Update name or birth date
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileRequest true "fields to update"
// @Success 200 {object} util.Response
// @Router /users/profile [put]
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user, err := ctrl.userService.UpdateProfile(claims.UserID, req)
	if err == util.ErrUserNotFound {
		util.NotFound(c, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, user)
}

// UploadAvatar godoc
// @Summary Upload a profile image
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "image file"
// @Success 200 {object} util.Response
// @Router /users/avatar [post]
func (ctrl *UserController) UploadAvatar(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		util.BadRequest(c, "avatar file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer file.Close()

	avatarURL, err := ctrl.userService.UploadAvatar(
		c.Request.Context(),
		claims.UserID,
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, gin.H{"avatar": avatarURL})
}
