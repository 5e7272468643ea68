package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/repository"

	"gorm.io/gorm"
)

var (
	ErrAlreadyInCart = errors.New("recipe already in shopping cart")
	ErrNotInCart     = errors.New("recipe not in shopping cart")
)

// ShoppingItem is one aggregated line of the shopping list: the total amount
// of an ingredient across every recipe in the cart.
type ShoppingItem struct {
	Name   string `json:"name"`
	Unit   string `json:"measurement_unit"`
	Amount int    `json:"amount"`
}

// ShoppingListCache stores rendered shopping lists keyed by user. The
// service treats cache failures as misses, never as request failures.
type ShoppingListCache interface {
	Get(ctx context.Context, userID string) (string, bool, error)
	Set(ctx context.Context, userID, text string) error
	Invalidate(ctx context.Context, userID string) error
}

type ShoppingListService interface {
	AddRecipe(ctx context.Context, userID string, recipeID int64) (*dto.RecipeShortResponse, error)
	RemoveRecipe(ctx context.Context, userID string, recipeID int64) error
	Aggregate(ctx context.Context, userID string) ([]ShoppingItem, error)
	BuildShoppingList(ctx context.Context, userID string) (string, error)
	InvalidateForRecipe(ctx context.Context, recipeID int64)
}

type shoppingListService struct {
	cartRepo   repository.ShoppingCartRepository
	recipeRepo repository.RecipeRepository
	cache      ShoppingListCache
	logger     *slog.Logger
}

func NewShoppingListService(
	cartRepo repository.ShoppingCartRepository,
	recipeRepo repository.RecipeRepository,
	cache ShoppingListCache,
	logger *slog.Logger,
) ShoppingListService {
	if logger == nil {
		logger = slog.Default()
	}
	return &shoppingListService{
		cartRepo:   cartRepo,
		recipeRepo: recipeRepo,
		cache:      cache,
		logger:     logger,
	}
}

func (s *shoppingListService) AddRecipe(ctx context.Context, userID string, recipeID int64) (*dto.RecipeShortResponse, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	exists, err := s.cartRepo.Exists(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyInCart
	}

	if err := s.cartRepo.Add(ctx, userID, recipeID); err != nil {
		// unique constraint is the backstop behind the existence check
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyInCart
		}
		return nil, err
	}

	s.invalidate(ctx, userID)
	short := dto.FromRecipeModelToShort(*recipe)
	return &short, nil
}

func (s *shoppingListService) RemoveRecipe(ctx context.Context, userID string, recipeID int64) error {
	removed, err := s.cartRepo.Remove(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotInCart
	}
	s.invalidate(ctx, userID)
	return nil
}

// Aggregate folds every ingredient line of every cart recipe into one total
// per ingredient name. Amounts sum; the unit is last-write-wins by scan
// order; first-appearance order across the scan is preserved. An empty cart
// yields an empty slice.
//
// Grouping is by name, not id: two catalog rows sharing a display name merge
// into one line, matching the exported report's point of view.
func (s *shoppingListService) Aggregate(ctx context.Context, userID string) ([]ShoppingItem, error) {
	lines, err := s.cartRepo.ListCartIngredients(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]ShoppingItem, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Ingredient == nil {
			return nil, fmt.Errorf("ingredient %d not loaded for recipe %d", line.IngredientID, line.RecipeID)
		}
		name := line.Ingredient.Name
		if i, ok := index[name]; ok {
			items[i].Amount += line.Amount
			items[i].Unit = line.Ingredient.MeasurementUnit
			continue
		}
		index[name] = len(items)
		items = append(items, ShoppingItem{
			Name:   name,
			Unit:   line.Ingredient.MeasurementUnit,
			Amount: line.Amount,
		})
	}
	return items, nil
}

// RenderShoppingList formats aggregated items as the downloadable plain-text
// report, one "Name (unit) - total" line per ingredient in insertion order.
func RenderShoppingList(items []ShoppingItem) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(fmt.Sprintf("%s (%s) - %d\n", capitalize(item.Name), item.Unit, item.Amount))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func (s *shoppingListService) BuildShoppingList(ctx context.Context, userID string) (string, error) {
	if text, ok := s.cacheGet(ctx, userID); ok {
		return text, nil
	}

	items, err := s.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}
	text := RenderShoppingList(items)

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, text); err != nil {
			s.logger.Warn("failed to cache shopping list", "user_id", userID, "error", err)
		}
	}
	return text, nil
}

func (s *shoppingListService) cacheGet(ctx context.Context, userID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	text, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("shopping list cache read failed", "user_id", userID, "error", err)
		return "", false
	}
	return text, ok
}

// InvalidateForRecipe drops the cached list of every user whose cart contains
// the recipe. Called when a recipe is edited or deleted, so carts referencing
// it never serve totals computed from the old ingredient lines.
func (s *shoppingListService) InvalidateForRecipe(ctx context.Context, recipeID int64) {
	if s.cache == nil {
		return
	}
	userIDs, err := s.cartRepo.ListUserIDsByRecipe(ctx, recipeID)
	if err != nil {
		s.logger.Warn("could not resolve carts for recipe, cached lists left to expire",
			"recipe_id", recipeID, "error", err)
		return
	}
	for _, userID := range userIDs {
		s.invalidate(ctx, userID)
	}
}

func (s *shoppingListService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("shopping list cache invalidation failed", "user_id", userID, "error", err)
	}
}
