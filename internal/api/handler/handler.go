package handler

import (
	"github.com/d60-Lab/social-feed/internal/service"
)

// Handler 聚合所有 HTTP 处理器依赖
type Handler struct {
	relService     service.RelationshipService
	publisher      *service.Publisher
	feedService    *service.FeedService
	counterService *service.CounterService
	userService    *service.UserService
}

func New(rel service.RelationshipService, pub *service.Publisher, feed *service.FeedService, counter *service.CounterService, users *service.UserService) *Handler {
	return &Handler{
		relService:     rel,
		publisher:      pub,
		feedService:    feed,
		counterService: counter,
		userService:    users,
	}
}
