package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type createPostRequest struct {
	AuthorID string `json:"author_id" binding:"required"`
	Caption  string `json:"caption"`
	MediaURL string `json:"media_url"`
}

// CreatePost 发帖并写扩散到粉丝 inbox
// @Summary 发帖
// @Tags 内容
// @Accept json
// @Produce json
// @Param request body createPostRequest true "帖子内容"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	postID, err := h.publisher.CreatePost(c.Request.Context(), req.AuthorID, req.Caption, req.MediaURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPost), errors.Is(err, service.ErrMissingUser), errors.Is(err, service.ErrAuthorNotFound):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, gin.H{"post_id": postID})
}
