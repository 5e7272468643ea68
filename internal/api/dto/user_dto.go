package dto

import "foodgram/internal/api/models"

// UserResponse is the read model for a user. IsSubscribed is computed
// against the acting user, which callers pass explicitly.
type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func FromUserModel(u models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

// SubscriptionResponse extends the user read model with the author's recipes.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

// UserListResponse wraps a paginated user listing.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Total int64          `json:"total"`
}
