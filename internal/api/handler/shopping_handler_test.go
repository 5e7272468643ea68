package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockShoppingListService mocks the ShoppingListService interface
type MockShoppingListService struct {
	mock.Mock
}

func (m *MockShoppingListService) AddRecipe(ctx context.Context, userID string, recipeID int64) (*dto.RecipeShortResponse, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecipeShortResponse), args.Error(1)
}

func (m *MockShoppingListService) RemoveRecipe(ctx context.Context, userID string, recipeID int64) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockShoppingListService) Aggregate(ctx context.Context, userID string) ([]service.ShoppingItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ShoppingItem), args.Error(1)
}

func (m *MockShoppingListService) BuildShoppingList(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockShoppingListService) InvalidateForRecipe(ctx context.Context, recipeID int64) {
	m.Called(ctx, recipeID)
}

func TestDownload_PlainTextAttachment(t *testing.T) {
	mockSvc := new(MockShoppingListService)
	handler := NewShoppingHandler(mockSvc)
	router := setupRouter()
	router.GET("/recipes/download_shopping_cart", asUser("user-1"), handler.Download)

	mockSvc.On("BuildShoppingList", mock.Anything, "user-1").
		Return("Flour (g) - 300\nEgg (pcs) - 2\nSugar (g) - 50\n", nil)

	req, _ := http.NewRequest("GET", "/recipes/download_shopping_cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Flour (g) - 300\nEgg (pcs) - 2\nSugar (g) - 50\n", w.Body.String())
	assert.Equal(t, `attachment; filename="Ingredients list"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestDownload_EmptyCart(t *testing.T) {
	mockSvc := new(MockShoppingListService)
	handler := NewShoppingHandler(mockSvc)
	router := setupRouter()
	router.GET("/recipes/download_shopping_cart", asUser("user-1"), handler.Download)

	mockSvc.On("BuildShoppingList", mock.Anything, "user-1").Return("", nil)

	req, _ := http.NewRequest("GET", "/recipes/download_shopping_cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// an empty cart still downloads, as an empty file
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", w.Body.String())
	assert.Equal(t, `attachment; filename="Ingredients list"`, w.Header().Get("Content-Disposition"))
}

func TestDownload_Unauthenticated(t *testing.T) {
	handler := NewShoppingHandler(new(MockShoppingListService))
	router := setupRouter()
	router.GET("/recipes/download_shopping_cart", handler.Download)

	req, _ := http.NewRequest("GET", "/recipes/download_shopping_cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAddToCart_Created(t *testing.T) {
	mockSvc := new(MockShoppingListService)
	handler := NewShoppingHandler(mockSvc)
	router := setupRouter()
	router.POST("/recipes/:recipe_id/shopping_cart", asUser("user-1"), handler.Add)

	mockSvc.On("AddRecipe", mock.Anything, "user-1", int64(9)).
		Return(&dto.RecipeShortResponse{ID: 9, Name: "soup", CookingTime: 30}, nil)

	req, _ := http.NewRequest("POST", "/recipes/9/shopping_cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got dto.RecipeShortResponse
	json.Unmarshal(w.Body.Bytes(), &got)
	assert.Equal(t, int64(9), got.ID)
	assert.Equal(t, "soup", got.Name)
}

func TestAddToCart_Duplicate(t *testing.T) {
	mockSvc := new(MockShoppingListService)
	handler := NewShoppingHandler(mockSvc)
	router := setupRouter()
	router.POST("/recipes/:recipe_id/shopping_cart", asUser("user-1"), handler.Add)

	mockSvc.On("AddRecipe", mock.Anything, "user-1", int64(9)).
		Return(nil, service.ErrAlreadyInCart)

	req, _ := http.NewRequest("POST", "/recipes/9/shopping_cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddToCart_RecipeNotFound(t *testing.T) {
	mockSvc := new(MockShoppingListService)
	handler := NewShoppingHandler(mockSvc)
	router := setupRouter()
	router.POST("/recipes/:recipe_id/shopping_cart", asUser("user-1"), handler.Add)

	mockSvc.On("AddRecipe", mock.Anything, "user-1", int64(404)).
		Return(nil, service.ErrRecipeNotFound)

	req, _ := http.NewRequest("POST", "/recipes/404/shopping_cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveFromCart_NotThere(t *testing.T) {
	mockSvc := new(MockShoppingListService)
	handler := NewShoppingHandler(mockSvc)
	router := setupRouter()
	router.DELETE("/recipes/:recipe_id/shopping_cart", asUser("user-1"), handler.Remove)

	mockSvc.On("RemoveRecipe", mock.Anything, "user-1", int64(9)).
		Return(service.ErrNotInCart)

	req, _ := http.NewRequest("DELETE", "/recipes/9/shopping_cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveFromCart_NoContent(t *testing.T) {
	mockSvc := new(MockShoppingListService)
	handler := NewShoppingHandler(mockSvc)
	router := setupRouter()
	router.DELETE("/recipes/:recipe_id/shopping_cart", asUser("user-1"), handler.Remove)

	mockSvc.On("RemoveRecipe", mock.Anything, "user-1", int64(9)).Return(nil)

	req, _ := http.NewRequest("DELETE", "/recipes/9/shopping_cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
