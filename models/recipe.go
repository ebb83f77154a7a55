package models

import "time"

type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"required,hexcolor,len=7"`
	Slug  string `json:"slug" binding:"required,max=100,slug"`
}

type Ingredient struct {
	ID              string `json:"id"`
	Name            string `json:"name" binding:"required,max=150"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=100"`
}

// RecipeIngredient is an ingredient line of a recipe with its amount.
type RecipeIngredient struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type Recipe struct {
	ID               string             `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           User               `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
	PubDate          time.Time          `json:"-"`
}

// ShortRecipe is the compact form used by favorites, carts and subscriptions.
type ShortRecipe struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// ============================================================================
// RECIPE REQUESTS
// ============================================================================

type IngredientAmount struct {
	ID     string `json:"id" binding:"required,uuid"`
	Amount int    `json:"amount" binding:"required,min=1,max=3000"`
}

type RecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" binding:"required,min=1,dive"`
	Tags        []string           `json:"tags" binding:"required,min=1,unique,dive,uuid"`
	Name        string             `json:"name" binding:"required,max=100"`
	Image       string             `json:"image"`
	Text        string             `json:"text" binding:"required,max=250"`
	CookingTime int                `json:"cooking_time" binding:"required,min=1,max=100"`
}

// DuplicateIngredient returns the first ingredient id listed more than once.
func (r RecipeRequest) DuplicateIngredient() (string, bool) {
	seen := make(map[string]struct{}, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if _, ok := seen[ing.ID]; ok {
			return ing.ID, true
		}
		seen[ing.ID] = struct{}{}
	}
	return "", false
}

type RecipeFilter struct {
	AuthorID         string
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	ViewerID         string
	Limit            int
	Offset           int
}
