package handlers

import (
	"context"
	"net/http"

	"github.com/LovationAdmin/foodgram-api/middleware"
	"github.com/LovationAdmin/foodgram-api/models"
	"github.com/LovationAdmin/foodgram-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RecipeNotifier is told about newly published recipes.
type RecipeNotifier interface {
	RecipePublished(ctx context.Context, authorID, recipeID string)
}

type RecipeHandler struct {
	Recipes RecipeStore
	Feed    RecipeNotifier
}

var recipeErrors = map[error]string{
	services.ErrInvalidReference: "Unknown ingredient or tag",
	services.ErrForbidden:        "You do not have permission to modify this recipe",
}

// ListRecipes returns one page of recipes, newest first.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	p := parsePage(c)
	viewerID := middleware.GetUserID(c)

	filter := models.RecipeFilter{
		AuthorID: c.Query("author"),
		TagSlugs: c.QueryArray("tags"),
		ViewerID: viewerID,
		Limit:    p.Limit,
		Offset:   p.Offset(),
	}
	if filter.AuthorID != "" {
		if _, err := uuid.Parse(filter.AuthorID); err != nil {
			c.JSON(http.StatusOK, newPage[models.Recipe](c, p, nil, 0))
			return
		}
	}
	if viewerID != "" {
		filter.IsFavorited = c.Query("is_favorited") == "1"
		filter.IsInShoppingCart = c.Query("is_in_shopping_cart") == "1"
	}

	recipes, total, err := h.Recipes.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, recipes, total))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.Recipes.GetByID(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func bindRecipe(c *gin.Context) (models.RecipeRequest, bool) {
	var req models.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return req, false
	}
	if _, dup := req.DuplicateIngredient(); dup {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Ingredients must be unique"})
		return req, false
	}
	return req, true
}

// CreateRecipe publishes a recipe authored by the caller.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	req, ok := bindRecipe(c)
	if !ok {
		return
	}

	authorID := middleware.GetUserID(c)
	recipe, err := h.Recipes.Create(c.Request.Context(), authorID, req)
	if err != nil {
		respondError(c, err, recipeErrors)
		return
	}

	if h.Feed != nil {
		h.Feed.RecipePublished(c.Request.Context(), authorID, recipe.ID)
	}
	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe replaces a recipe's content. Author or admin only.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, ok := bindRecipe(c)
	if !ok {
		return
	}

	recipe, err := h.Recipes.Update(c.Request.Context(), id, middleware.GetUserID(c), middleware.IsAdmin(c), req)
	if err != nil {
		respondError(c, err, recipeErrors)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Recipes.Delete(c.Request.Context(), id, middleware.GetUserID(c), middleware.IsAdmin(c)); err != nil {
		respondError(c, err, recipeErrors)
		return
	}
	c.Status(http.StatusNoContent)
}
