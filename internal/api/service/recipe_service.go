package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/models"
	"foodgram/internal/api/repository"

	"gorm.io/gorm"
)

var (
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrNotRecipeAuthor = errors.New("only the author can modify this recipe")
)

type RecipeService interface {
	List(ctx context.Context, actingUserID string, filter repository.RecipeFilter, page, pageSize int) ([]dto.RecipeResponse, int64, error)
	Get(ctx context.Context, actingUserID string, id int64) (*dto.RecipeResponse, error)
	Create(ctx context.Context, authorID string, in dto.RecipeWriteRequest) (*dto.RecipeResponse, error)
	Update(ctx context.Context, actingUserID string, id int64, in dto.RecipeWriteRequest) (*dto.RecipeResponse, error)
	Delete(ctx context.Context, actingUserID string, id int64) error

	// NormalizeIngredients validates and deduplicates raw (id, amount) pairs.
	// Exposed on the interface because the contract (merge by summation,
	// aggregate every violation) is what the write endpoints are built on.
	NormalizeIngredients(ctx context.Context, raw []dto.IngredientAmount) ([]models.RecipeIngredient, error)
}

// ShoppingListInvalidator drops cached shopping lists of every cart that
// references a recipe. Satisfied by ShoppingListService; nil disables it.
type ShoppingListInvalidator interface {
	InvalidateForRecipe(ctx context.Context, recipeID int64)
}

type recipeService struct {
	recipeRepo      repository.RecipeRepository
	ingredientRepo  repository.IngredientRepository
	tagRepo         repository.TagRepository
	favouriteRepo   repository.FavouriteRepository
	cartRepo        repository.ShoppingCartRepository
	followRepo      repository.FollowRepository
	listInvalidator ShoppingListInvalidator
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	ingredientRepo repository.IngredientRepository,
	tagRepo repository.TagRepository,
	favouriteRepo repository.FavouriteRepository,
	cartRepo repository.ShoppingCartRepository,
	followRepo repository.FollowRepository,
	listInvalidator ShoppingListInvalidator,
) RecipeService {
	return &recipeService{
		recipeRepo:      recipeRepo,
		ingredientRepo:  ingredientRepo,
		tagRepo:         tagRepo,
		favouriteRepo:   favouriteRepo,
		cartRepo:        cartRepo,
		followRepo:      followRepo,
		listInvalidator: listInvalidator,
	}
}

// NormalizeIngredients resolves every referenced ingredient, checks every
// amount, and merges duplicate ids by summing their amounts. First-occurrence
// order is preserved. The whole input is scanned before any error is
// returned, so one ValidationError carries every unknown reference and every
// bad amount at once.
func (s *recipeService) NormalizeIngredients(ctx context.Context, raw []dto.IngredientAmount) ([]models.RecipeIngredient, error) {
	if len(raw) == 0 {
		return nil, newValidationError("ingredients: list must not be empty")
	}

	ids := make([]int64, 0, len(raw))
	seen := make(map[int64]bool, len(raw))
	for _, entry := range raw {
		if !seen[entry.ID] {
			seen[entry.ID] = true
			ids = append(ids, entry.ID)
		}
	}

	known, err := s.ingredientRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Ingredient, len(known))
	for _, ing := range known {
		byID[ing.ID] = ing
	}

	var violations []string
	reported := make(map[string]bool)
	addViolation := func(v string) {
		if !reported[v] {
			reported[v] = true
			violations = append(violations, v)
		}
	}

	order := make([]int64, 0, len(ids))
	amounts := make(map[int64]int, len(ids))
	for _, entry := range raw {
		ing, ok := byID[entry.ID]
		if !ok {
			addViolation(fmt.Sprintf("ingredients: unknown ingredient id %d", entry.ID))
		}
		if entry.Amount < 1 {
			if ok {
				addViolation(fmt.Sprintf("ingredients: amount for %q must be at least 1", ing.Name))
			} else {
				addViolation(fmt.Sprintf("ingredients: amount for ingredient id %d must be at least 1", entry.ID))
			}
		}
		if _, dup := amounts[entry.ID]; !dup {
			order = append(order, entry.ID)
		}
		amounts[entry.ID] += entry.Amount
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	lines := make([]models.RecipeIngredient, 0, len(order))
	for _, id := range order {
		ing := byID[id]
		lines = append(lines, models.RecipeIngredient{
			IngredientID: id,
			Amount:       amounts[id],
			Ingredient:   &ing,
		})
	}
	return lines, nil
}

// resolveTags validates the raw tag id list. Tags are a set, not a multiset:
// duplicates collapse instead of merging amounts.
func (s *recipeService) resolveTags(ctx context.Context, tagIDs []int64) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, newValidationError("tags: list must not be empty")
	}

	ids := make([]int64, 0, len(tagIDs))
	seen := make(map[int64]bool, len(tagIDs))
	for _, id := range tagIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	known, err := s.tagRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Tag, len(known))
	for _, t := range known {
		byID[t.ID] = t
	}

	var violations []string
	tags := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			violations = append(violations, fmt.Sprintf("tags: unknown tag id %d", id))
			continue
		}
		tags = append(tags, t)
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return tags, nil
}

// collect merges a ValidationError into violations; any other error aborts.
func collect(violations *[]string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		*violations = append(*violations, ve.Violations...)
		return nil
	}
	return err
}

func (s *recipeService) Create(ctx context.Context, authorID string, in dto.RecipeWriteRequest) (*dto.RecipeResponse, error) {
	var violations []string

	lines, err := s.NormalizeIngredients(ctx, in.Ingredients)
	if err := collect(&violations, err); err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, in.Tags)
	if err := collect(&violations, err); err != nil {
		return nil, err
	}

	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		violations = append(violations, "name: field is required")
	}
	if in.Image == nil || strings.TrimSpace(*in.Image) == "" {
		violations = append(violations, "image: field is required")
	}
	if in.Text == nil || strings.TrimSpace(*in.Text) == "" {
		violations = append(violations, "text: field is required")
	}
	if in.CookingTime == nil {
		violations = append(violations, "cooking_time: field is required")
	} else if *in.CookingTime < 1 {
		violations = append(violations, "cooking_time: must be at least 1")
	}

	// All validation happens before any mutation.
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        *in.Name,
		Image:       *in.Image,
		Text:        *in.Text,
		CookingTime: *in.CookingTime,
	}
	if err := s.recipeRepo.Create(ctx, recipe, lines, tags); err != nil {
		return nil, err
	}

	return s.Get(ctx, authorID, recipe.ID)
}

func (s *recipeService) Update(ctx context.Context, actingUserID string, id int64, in dto.RecipeWriteRequest) (*dto.RecipeResponse, error) {
	existing, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if existing.AuthorID != actingUserID {
		return nil, ErrNotRecipeAuthor
	}

	var violations []string

	// Ingredients and tags, when provided, fully replace the existing
	// association. A nil slice means "keep what is there".
	var lines []models.RecipeIngredient
	if in.Ingredients != nil {
		lines, err = s.NormalizeIngredients(ctx, in.Ingredients)
		if err := collect(&violations, err); err != nil {
			return nil, err
		}
	}
	var tags []models.Tag
	if in.Tags != nil {
		tags, err = s.resolveTags(ctx, in.Tags)
		if err := collect(&violations, err); err != nil {
			return nil, err
		}
	}

	// Scalars merge: if provided overwrite, else keep.
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			violations = append(violations, "name: must not be blank")
		} else {
			existing.Name = *in.Name
		}
	}
	if in.Image != nil {
		existing.Image = *in.Image
	}
	if in.Text != nil {
		if strings.TrimSpace(*in.Text) == "" {
			violations = append(violations, "text: must not be blank")
		} else {
			existing.Text = *in.Text
		}
	}
	if in.CookingTime != nil {
		if *in.CookingTime < 1 {
			violations = append(violations, "cooking_time: must be at least 1")
		} else {
			existing.CookingTime = *in.CookingTime
		}
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	updated := &models.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        existing.Name,
		Image:       existing.Image,
		Text:        existing.Text,
		CookingTime: existing.CookingTime,
	}
	if err := s.recipeRepo.Update(ctx, updated, lines, tags); err != nil {
		return nil, err
	}

	// cached shopping lists built from the old lines are now stale
	if s.listInvalidator != nil {
		s.listInvalidator.InvalidateForRecipe(ctx, id)
	}

	return s.Get(ctx, actingUserID, id)
}

func (s *recipeService) Delete(ctx context.Context, actingUserID string, id int64) error {
	existing, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	if existing.AuthorID != actingUserID {
		return ErrNotRecipeAuthor
	}

	// resolve and drop affected cached lists while the cart rows still exist;
	// deleting the recipe cascades them away
	if s.listInvalidator != nil {
		s.listInvalidator.InvalidateForRecipe(ctx, id)
	}
	return s.recipeRepo.Delete(ctx, id)
}

func (s *recipeService) Get(ctx context.Context, actingUserID string, id int64) (*dto.RecipeResponse, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	resp, err := s.buildResponse(ctx, *recipe, actingUserID)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *recipeService) List(ctx context.Context, actingUserID string, filter repository.RecipeFilter, page, pageSize int) ([]dto.RecipeResponse, int64, error) {
	filter.UserID = actingUserID
	list, total, err := s.recipeRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.RecipeResponse, 0, len(list))
	for _, recipe := range list {
		item, err := s.buildResponse(ctx, recipe, actingUserID)
		if err != nil {
			return nil, 0, err
		}
		resp = append(resp, item)
	}
	return resp, total, nil
}

// buildResponse assembles the read model. The per-user flags are computed
// against the acting user passed in explicitly; an empty id (anonymous
// request) leaves them false.
func (s *recipeService) buildResponse(ctx context.Context, recipe models.Recipe, actingUserID string) (dto.RecipeResponse, error) {
	var isFavorited, inCart, isSubscribed bool
	if actingUserID != "" {
		var err error
		if isFavorited, err = s.favouriteRepo.Exists(ctx, actingUserID, recipe.ID); err != nil {
			return dto.RecipeResponse{}, err
		}
		if inCart, err = s.cartRepo.Exists(ctx, actingUserID, recipe.ID); err != nil {
			return dto.RecipeResponse{}, err
		}
		if recipe.Author != nil {
			if isSubscribed, err = s.followRepo.Exists(ctx, actingUserID, recipe.AuthorID); err != nil {
				return dto.RecipeResponse{}, err
			}
		}
	}
	resp := dto.FromRecipeModel(recipe, isFavorited, inCart)
	resp.Author.IsSubscribed = isSubscribed
	return resp, nil
}
