package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

// UpsertUserInput 用户资料写入参数
type UpsertUserInput struct {
	ID        string `validate:"omitempty,uuid"`
	Username  string `validate:"required,min=2,max=64"`
	Email     string `validate:"required,email"`
	Password  string `validate:"omitempty,min=6"`
	Age       int    `validate:"omitempty,gte=0,lte=150"`
	Bio       string
	AvatarURL string `validate:"omitempty,url"`
}

// UserService 用户资料（外部协作方的最小实现：upsert + 读取）
type UserService struct {
	repo     repository.UserRepository
	profiles *cache.ProfileCache
	validate *validator.Validate
}

func NewUserService(repo repository.UserRepository, profiles *cache.ProfileCache) *UserService {
	return &UserService{repo: repo, profiles: profiles, validate: validator.New()}
}

// Upsert 创建或更新用户；密码仅在提供时重置（bcrypt 存储）
func (s *UserService) Upsert(ctx context.Context, in UpsertUserInput) (*model.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	u := &model.User{
		ID:        in.ID,
		Username:  in.Username,
		Email:     in.Email,
		Age:       in.Age,
		Bio:       in.Bio,
		AvatarURL: in.AvatarURL,
		UpdatedAt: time.Now(),
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.Password = string(hash)
	} else if existing, err := s.repo.GetByID(ctx, u.ID); err == nil {
		u.Password = existing.Password
	}
	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	if s.profiles != nil {
		s.profiles.Invalidate(ctx, u.ID)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}
