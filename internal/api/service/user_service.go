package service

import (
	"context"
	"errors"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/repository"

	"gorm.io/gorm"
)

type UserService interface {
	List(ctx context.Context, actingUserID string, page, pageSize int) ([]dto.UserResponse, int64, error)
	Get(ctx context.Context, actingUserID, id string) (*dto.UserResponse, error)
}

type userService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
}

func NewUserService(repo repository.UserRepository, followRepo repository.FollowRepository) UserService {
	return &userService{
		repo:       repo,
		followRepo: followRepo,
	}
}

func (s *userService) List(ctx context.Context, actingUserID string, page, pageSize int) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		isSubscribed := false
		if actingUserID != "" && actingUserID != u.ID {
			if isSubscribed, err = s.followRepo.Exists(ctx, actingUserID, u.ID); err != nil {
				return nil, 0, err
			}
		}
		resp = append(resp, dto.FromUserModel(u, isSubscribed))
	}
	return resp, total, nil
}

func (s *userService) Get(ctx context.Context, actingUserID, id string) (*dto.UserResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	isSubscribed := false
	if actingUserID != "" && actingUserID != u.ID {
		if isSubscribed, err = s.followRepo.Exists(ctx, actingUserID, u.ID); err != nil {
			return nil, err
		}
	}
	resp := dto.FromUserModel(*u, isSubscribed)
	return &resp, nil
}
