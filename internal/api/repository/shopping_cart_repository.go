package repository

import (
	"context"
	"fmt"

	"foodgram/internal/api/models"

	"gorm.io/gorm"
)

type ShoppingCartRepository interface {
	Add(ctx context.Context, userID string, recipeID int64) error
	Remove(ctx context.Context, userID string, recipeID int64) (bool, error)
	Exists(ctx context.Context, userID string, recipeID int64) (bool, error)
	// ListCartIngredients returns every ingredient line of every recipe in the
	// user's cart, ordered by cart insertion then line id, with the referenced
	// Ingredient loaded.
	ListCartIngredients(ctx context.Context, userID string) ([]models.RecipeIngredient, error)
	// ListUserIDsByRecipe returns the ids of users whose carts contain the recipe.
	ListUserIDsByRecipe(ctx context.Context, recipeID int64) ([]string, error)
}

type shoppingCartRepository struct {
	db *gorm.DB
}

func NewShoppingCartRepository(db *gorm.DB) ShoppingCartRepository {
	return &shoppingCartRepository{db: db}
}

func (r *shoppingCartRepository) Add(ctx context.Context, userID string, recipeID int64) error {
	entry := &models.ShoppingCart{
		UserID:   userID,
		RecipeID: recipeID,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("add to shopping cart: %w", err)
	}
	return nil
}

func (r *shoppingCartRepository) Remove(ctx context.Context, userID string, recipeID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCart{})
	if result.Error != nil {
		return false, fmt.Errorf("remove from shopping cart: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *shoppingCartRepository) Exists(ctx context.Context, userID string, recipeID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ShoppingCart{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *shoppingCartRepository) ListCartIngredients(ctx context.Context, userID string) ([]models.RecipeIngredient, error) {
	var lines []models.RecipeIngredient
	if err := r.db.WithContext(ctx).
		Joins("JOIN shopping_cart ON shopping_cart.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart.user_id = ?", userID).
		Order("shopping_cart.id, recipe_ingredients.id").
		Preload("Ingredient").
		Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("list cart ingredients: %w", err)
	}
	return lines, nil
}

func (r *shoppingCartRepository) ListUserIDsByRecipe(ctx context.Context, recipeID int64) ([]string, error) {
	var userIDs []string
	if err := r.db.WithContext(ctx).
		Model(&models.ShoppingCart{}).
		Where("recipe_id = ?", recipeID).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("list cart users for recipe: %w", err)
	}
	return userIDs, nil
}
