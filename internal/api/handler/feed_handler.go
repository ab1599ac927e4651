package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/pkg/response"
)

// GetFeed 读取拼装后的 feed 页（空分区触发回填）
// @Summary 读取时间线
// @Tags 时间线
// @Param user_id path string true "用户ID"
// @Param page_size query int false "页大小" default(20)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/feed/{user_id} [get]
func (h *Handler) GetFeed(c *gin.Context) {
	userID := c.Param("user_id")
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	items, err := h.feedService.GetFeed(c.Request.Context(), userID, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page_size": pageSize, "list": items})
}
