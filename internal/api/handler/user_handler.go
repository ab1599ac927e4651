package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type upsertUserRequest struct {
	ID        string `json:"id"`
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password"`
	Age       int    `json:"age"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// UpsertUser 创建或更新用户资料
// @Summary 用户 upsert
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body upsertUserRequest true "用户资料"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/users [put]
func (h *Handler) UpsertUser(c *gin.Context) {
	var req upsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.Upsert(c.Request.Context(), service.UpsertUserInput{
		ID:        req.ID,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Age:       req.Age,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, gin.H{"id": u.ID})
}

// GetUser 查询用户资料
// @Summary 用户查询
// @Tags 用户
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{user_id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.userService.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "user not found")
		} else {
			response.InternalError(c, err)
		}
		return
	}
	u.Password = ""
	response.Success(c, u)
}
