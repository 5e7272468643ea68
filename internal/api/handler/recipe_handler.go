package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/repository"
	"foodgram/internal/api/service"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	recipeService    service.RecipeService
	favouriteService service.FavouriteService
}

func NewRecipeHandler(recipeService service.RecipeService, favouriteService service.FavouriteService) *RecipeHandler {
	return &RecipeHandler{
		recipeService:    recipeService,
		favouriteService: favouriteService,
	}
}

func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired, authOptional gin.HandlerFunc) {
	rg.GET("", authOptional, h.List)
	rg.GET("/:recipe_id", authOptional, h.Get)
	rg.POST("", authRequired, h.Create)
	rg.PUT("/:recipe_id", authRequired, h.Update)
	rg.DELETE("/:recipe_id", authRequired, h.Delete)
	rg.POST("/:recipe_id/favorite", authRequired, h.AddFavourite)
	rg.DELETE("/:recipe_id/favorite", authRequired, h.RemoveFavourite)
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// A ValidationError carries every violation and becomes one 400 body.
func writeServiceError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"errors": ve.Violations})
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
	case errors.Is(err, service.ErrNotRecipeAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *RecipeHandler) List(c *gin.Context) {
	actingUserID, _ := currentUserID(c)
	page, pageSize := paginationParams(c)

	filter := repository.RecipeFilter{
		AuthorID: c.Query("author"),
		TagSlug:  c.Query("tags"),
	}
	if raw := c.Query("is_favorited"); raw != "" {
		v := raw == "1" || raw == "true"
		filter.Favorited = &v
	}
	if raw := c.Query("is_in_shopping_cart"); raw != "" {
		v := raw == "1" || raw == "true"
		filter.InShoppingCart = &v
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipes, total, err := h.recipeService.List(ctx, actingUserID, filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   total,
		"results": recipes,
	})
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		return
	}
	actingUserID, _ := currentUserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipe, err := h.recipeService.Get(ctx, actingUserID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipe, err := h.recipeService.Create(ctx, userID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipe, err := h.recipeService.Update(ctx, userID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.recipeService.Delete(ctx, userID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavourite(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	short, err := h.favouriteService.Add(ctx, userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecipeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		case errors.Is(err, service.ErrAlreadyFavourited):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) RemoveFavourite(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.favouriteService.Remove(ctx, userID, id); err != nil {
		if errors.Is(err, service.ErrNotFavourited) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// recipeID parses the :recipe_id path param; on failure it writes the 400
// response itself so callers just return.
func recipeID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("recipe_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe_id"})
		return 0, err
	}
	return id, nil
}
