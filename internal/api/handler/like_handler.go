package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type likeRequest struct {
	PostID  string `json:"post_id" binding:"required"`
	ActorID string `json:"actor_id" binding:"required"`
}

// Like 点赞（同一 actor 幂等）
// @Summary 点赞
// @Tags 互动
// @Accept json
// @Produce json
// @Param request body likeRequest true "点赞信息"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/likes [post]
func (h *Handler) Like(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	n, err := h.counterService.Like(c.Request.Context(), req.PostID, req.ActorID)
	if err != nil {
		if errors.Is(err, service.ErrCounterUnavailable) {
			response.InternalError(c, err)
		} else {
			response.BadRequest(c, err.Error())
		}
		return
	}
	response.Success(c, gin.H{"count": n})
}

// Unlike 撤销点赞
// @Summary 撤销点赞
// @Tags 互动
// @Accept json
// @Produce json
// @Param request body likeRequest true "撤销信息"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Router /api/v1/likes [delete]
func (h *Handler) Unlike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	n, err := h.counterService.Unlike(c.Request.Context(), req.PostID, req.ActorID)
	if err != nil {
		if errors.Is(err, service.ErrCounterUnavailable) {
			response.InternalError(c, err)
		} else {
			response.BadRequest(c, err.Error())
		}
		return
	}
	response.Success(c, gin.H{"count": n})
}

// GetCount 查询点赞数
// @Summary 点赞计数
// @Tags 互动
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/likes/{post_id} [get]
func (h *Handler) GetCount(c *gin.Context) {
	postID := c.Param("post_id")
	n, err := h.counterService.GetCount(c.Request.Context(), postID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"post_id": postID, "count": n})
}
