package dto

import "foodgram/internal/api/models"

// IngredientAmount is one raw (ingredient id, amount) pair as submitted by
// the client. Duplicate ids are legal on the wire and merged by summation
// before anything is persisted.
type IngredientAmount struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// RecipeWriteRequest is the write model for both create and update.
// On create every field is required; on update scalar fields are
// merge-if-provided while Ingredients and Tags, when present, fully replace
// the existing associations.
type RecipeWriteRequest struct {
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []int64            `json:"tags"`
	Name        *string            `json:"name,omitempty"`
	Image       *string            `json:"image,omitempty"`
	Text        *string            `json:"text,omitempty"`
	CookingTime *int               `json:"cooking_time,omitempty"`
}

// RecipeIngredientResponse is one resolved ingredient line in the read model.
type RecipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full read model for a recipe.
type RecipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeShortResponse is the compact read model used in favourites,
// shopping cart confirmations and subscription listings.
type RecipeShortResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func FromRecipeModel(m models.Recipe, isFavorited, inShoppingCart bool) RecipeResponse {
	resp := RecipeResponse{
		ID:               m.ID,
		Tags:             m.Tags,
		Ingredients:      make([]RecipeIngredientResponse, 0, len(m.Ingredients)),
		IsFavorited:      isFavorited,
		IsInShoppingCart: inShoppingCart,
		Name:             m.Name,
		Image:            m.Image,
		Text:             m.Text,
		CookingTime:      m.CookingTime,
	}
	if m.Tags == nil {
		resp.Tags = []models.Tag{}
	}
	if m.Author != nil {
		resp.Author = FromUserModel(*m.Author, false)
	}
	for _, line := range m.Ingredients {
		item := RecipeIngredientResponse{
			ID:     line.IngredientID,
			Amount: line.Amount,
		}
		if line.Ingredient != nil {
			item.Name = line.Ingredient.Name
			item.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		resp.Ingredients = append(resp.Ingredients, item)
	}
	return resp
}

func FromRecipeModelToShort(m models.Recipe) RecipeShortResponse {
	return RecipeShortResponse{
		ID:          m.ID,
		Name:        m.Name,
		Image:       m.Image,
		CookingTime: m.CookingTime,
	}
}
