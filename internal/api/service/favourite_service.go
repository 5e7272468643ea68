package service

import (
	"context"
	"errors"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/repository"

	"gorm.io/gorm"
)

var (
	ErrAlreadyFavourited = errors.New("recipe already in favourites")
	ErrNotFavourited     = errors.New("recipe not in favourites")
)

type FavouriteService interface {
	Add(ctx context.Context, userID string, recipeID int64) (*dto.RecipeShortResponse, error)
	Remove(ctx context.Context, userID string, recipeID int64) error
}

type favouriteService struct {
	repo       repository.FavouriteRepository
	recipeRepo repository.RecipeRepository
}

func NewFavouriteService(repo repository.FavouriteRepository, recipeRepo repository.RecipeRepository) FavouriteService {
	return &favouriteService{
		repo:       repo,
		recipeRepo: recipeRepo,
	}
}

func (s *favouriteService) Add(ctx context.Context, userID string, recipeID int64) (*dto.RecipeShortResponse, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyFavourited
	}

	if err := s.repo.Add(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyFavourited
		}
		return nil, err
	}

	short := dto.FromRecipeModelToShort(*recipe)
	return &short, nil
}

func (s *favouriteService) Remove(ctx context.Context, userID string, recipeID int64) error {
	removed, err := s.repo.Remove(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFavourited
	}
	return nil
}
