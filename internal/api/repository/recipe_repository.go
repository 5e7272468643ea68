package repository

import (
	"context"
	"fmt"

	"foodgram/internal/api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter is the typed query filter for recipe listings. UserID is the
// acting user the favourite/cart predicates are evaluated against; when it is
// empty those predicates are skipped.
type RecipeFilter struct {
	AuthorID       string
	TagSlug        string
	Favorited      *bool
	InShoppingCart *bool
	UserID         string
}

type RecipeRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	List(ctx context.Context, filter RecipeFilter, page, pageSize int) ([]models.Recipe, int64, error)
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Recipe, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
	Create(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient, tags []models.Tag) error
	Update(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient, tags []models.Tag) error
	Delete(ctx context.Context, id int64) error
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient").
		First(&recipe, id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter, page, pageSize int) ([]models.Recipe, int64, error) {
	var list []models.Recipe
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Recipe{})
	q = applyRecipeFilter(q, filter)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := q.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient").
		Order("pub_date desc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}

	return list, total, nil
}

// applyRecipeFilter compiles the typed filter into query predicates.
func applyRecipeFilter(q *gorm.DB, f RecipeFilter) *gorm.DB {
	if f.AuthorID != "" {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if f.TagSlug != "" {
		q = q.Where("recipes.id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug = ?", f.TagSlug))
	}
	if f.Favorited != nil && f.UserID != "" {
		sub := q.Session(&gorm.Session{NewDB: true}).
			Table("favourites").
			Select("favourites.recipe_id").
			Where("favourites.user_id = ?", f.UserID)
		if *f.Favorited {
			q = q.Where("recipes.id IN (?)", sub)
		} else {
			q = q.Where("recipes.id NOT IN (?)", sub)
		}
	}
	if f.InShoppingCart != nil && f.UserID != "" {
		sub := q.Session(&gorm.Session{NewDB: true}).
			Table("shopping_cart").
			Select("shopping_cart.recipe_id").
			Where("shopping_cart.user_id = ?", f.UserID)
		if *f.InShoppingCart {
			q = q.Where("recipes.id IN (?)", sub)
		} else {
			q = q.Where("recipes.id NOT IN (?)", sub)
		}
	}
	return q
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]models.Recipe, error) {
	var list []models.Recipe
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list recipes by author: %w", err)
	}
	return list, nil
}

func (r *recipeRepository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Create inserts the recipe row, its ingredient lines and its tag set in one
// transaction. A recipe is never visible with a partial association: any
// failure rolls the whole insert back.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient, tags []models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		for i := range lines {
			lines[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("create recipe ingredients: %w", err)
		}
		if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
			return fmt.Errorf("set recipe tags: %w", err)
		}
		return nil
	})
}

// Update saves the scalar fields and, when lines/tags are non-nil, replaces
// the corresponding association wholesale. The recipe row is locked FOR
// UPDATE for the whole transaction so concurrent replaces of the same recipe
// serialize instead of interleaving their delete/insert pairs.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, lines []models.RecipeIngredient, tags []models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Recipe
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, recipe.ID).Error; err != nil {
			return fmt.Errorf("lock recipe: %w", err)
		}

		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}

		if lines != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).
				Delete(&models.RecipeIngredient{}).Error; err != nil {
				return fmt.Errorf("clear recipe ingredients: %w", err)
			}
			for i := range lines {
				lines[i].ID = 0
				lines[i].RecipeID = recipe.ID
			}
			if err := tx.Create(&lines).Error; err != nil {
				return fmt.Errorf("replace recipe ingredients: %w", err)
			}
		}

		if tags != nil {
			if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
				return fmt.Errorf("replace recipe tags: %w", err)
			}
		}
		return nil
	})
}

func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("delete recipe ingredients: %w", err)
		}
		if err := tx.Delete(&models.Recipe{}, id).Error; err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
}
