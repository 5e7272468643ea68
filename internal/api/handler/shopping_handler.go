package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"foodgram/internal/api/service"

	"github.com/gin-gonic/gin"
)

type ShoppingHandler struct {
	svc service.ShoppingListService
}

func NewShoppingHandler(svc service.ShoppingListService) *ShoppingHandler {
	return &ShoppingHandler{svc: svc}
}

func (h *ShoppingHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc) {
	rg.GET("/download_shopping_cart", authRequired, h.Download)
	rg.POST("/:recipe_id/shopping_cart", authRequired, h.Add)
	rg.DELETE("/:recipe_id/shopping_cart", authRequired, h.Remove)
}

func (h *ShoppingHandler) Add(c *gin.Context) {
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

	short, err := h.svc.AddRecipe(ctx, userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecipeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		case errors.Is(err, service.ErrAlreadyInCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, short)
}

func (h *ShoppingHandler) Remove(c *gin.Context) {
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

	if err := h.svc.RemoveRecipe(ctx, userID, id); err != nil {
		if errors.Is(err, service.ErrNotInCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Download returns the aggregated shopping list as a plain-text attachment.
// An empty cart yields an empty file, still with 200.
func (h *ShoppingHandler) Download(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	text, err := h.svc.BuildShoppingList(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="Ingredients list"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
