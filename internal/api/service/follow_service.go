package service

import (
	"context"
	"errors"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/models"
	"foodgram/internal/api/repository"

	"gorm.io/gorm"
)

var (
	ErrAlreadyFollowing = errors.New("already subscribed to this author")
	ErrNotFollowing     = errors.New("not subscribed to this author")
	ErrSelfFollow       = errors.New("cannot subscribe to yourself")
	ErrUserNotFound     = errors.New("user not found")
)

type FollowService interface {
	Subscribe(ctx context.Context, userID, authorID string) (*dto.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, userID, authorID string) error
	Subscriptions(ctx context.Context, userID string, recipesLimit int) ([]dto.SubscriptionResponse, error)
}

type followService struct {
	repo       repository.FollowRepository
	userRepo   repository.UserRepository
	recipeRepo repository.RecipeRepository
}

func NewFollowService(
	repo repository.FollowRepository,
	userRepo repository.UserRepository,
	recipeRepo repository.RecipeRepository,
) FollowService {
	return &followService{
		repo:       repo,
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
	}
}

func (s *followService) Subscribe(ctx context.Context, userID, authorID string) (*dto.SubscriptionResponse, error) {
	if userID == authorID {
		return nil, ErrSelfFollow
	}

	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, userID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyFollowing
	}

	if err := s.repo.Add(ctx, userID, authorID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyFollowing
		}
		return nil, err
	}

	return s.buildSubscription(ctx, *author, 0)
}

func (s *followService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	removed, err := s.repo.Remove(ctx, userID, authorID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFollowing
	}
	return nil
}

// Subscriptions lists the followed authors with their recipes.
// recipesLimit caps the recipes included per author; 0 means no cap.
func (s *followService) Subscriptions(ctx context.Context, userID string, recipesLimit int) ([]dto.SubscriptionResponse, error) {
	authors, err := s.repo.ListAuthors(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		sub, err := s.buildSubscription(ctx, author, recipesLimit)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *sub)
	}
	return resp, nil
}

func (s *followService) buildSubscription(ctx context.Context, author models.User, recipesLimit int) (*dto.SubscriptionResponse, error) {
	recipes, err := s.recipeRepo.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	count, err := s.recipeRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	sub := dto.SubscriptionResponse{
		UserResponse: dto.FromUserModel(author, true),
		Recipes:      make([]dto.RecipeShortResponse, 0, len(recipes)),
		RecipesCount: count,
	}
	for _, recipe := range recipes {
		sub.Recipes = append(sub.Recipes, dto.FromRecipeModelToShort(recipe))
	}
	return &sub, nil
}
