package handlers

import (
	"net/http"

	"github.com/LovationAdmin/foodgram-api/metrics"
	"github.com/LovationAdmin/foodgram-api/middleware"
	"github.com/LovationAdmin/foodgram-api/models"
	"github.com/LovationAdmin/foodgram-api/services"
	"github.com/LovationAdmin/foodgram-api/utils"

	"github.com/gin-gonic/gin"
)

// CartHandler serves favorites, shopping carts and the shopping list download.
// Anonymous callers get a cart bound to their session cookie.
type CartHandler struct {
	Carts    CartStore
	Sessions services.SessionCartStore
}

var (
	favoriteErrors = map[error]string{
		services.ErrAlreadyExists: "Recipe is already in favorites",
		services.ErrNotInList:     "Recipe is not in favorites",
	}
	cartErrors = map[error]string{
		services.ErrAlreadyExists: "Recipe is already in the shopping cart",
		services.ErrNotInList:     "Recipe is not in the shopping cart",
	}
)

// ============================================================================
// FAVORITES
// ============================================================================

func (h *CartHandler) AddFavorite(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.Carts.AddTo(c.Request.Context(), services.Favorites, middleware.GetUserID(c), recipeID)
	if err != nil {
		respondError(c, err, favoriteErrors)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *CartHandler) RemoveFavorite(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.Carts.ShortRecipe(c.Request.Context(), recipeID); err != nil {
		respondError(c, err, nil)
		return
	}
	if err := h.Carts.RemoveFrom(c.Request.Context(), services.Favorites, middleware.GetUserID(c), recipeID); err != nil {
		respondError(c, err, favoriteErrors)
		return
	}
	c.Status(http.StatusNoContent)
}

// ============================================================================
// SHOPPING CART
// ============================================================================

// AddToCart puts a recipe into the caller's cart: the persisted one for
// authenticated users, the session one otherwise.
func (h *CartHandler) AddToCart(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if userID := middleware.GetUserID(c); userID != "" {
		recipe, err := h.Carts.AddTo(ctx, services.ShoppingCart, userID, recipeID)
		if err != nil {
			respondError(c, err, cartErrors)
			return
		}
		utils.LogCartAction("add", userID, 1)
		c.JSON(http.StatusCreated, recipe)
		return
	}

	recipe, err := h.Carts.ShortRecipe(ctx, recipeID)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	sessionID := middleware.EnsureSessionID(c)
	added, err := h.Sessions.Add(ctx, sessionID, recipeID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	if !added {
		respondError(c, services.ErrAlreadyExists, cartErrors)
		return
	}
	utils.LogCartAction("add", "session:"+sessionID, 1)
	c.JSON(http.StatusCreated, recipe)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.Carts.ShortRecipe(ctx, recipeID); err != nil {
		respondError(c, err, nil)
		return
	}

	if userID := middleware.GetUserID(c); userID != "" {
		if err := h.Carts.RemoveFrom(ctx, services.ShoppingCart, userID, recipeID); err != nil {
			respondError(c, err, cartErrors)
			return
		}
		utils.LogCartAction("remove", userID, 1)
		c.Status(http.StatusNoContent)
		return
	}

	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		respondError(c, services.ErrNotInList, cartErrors)
		return
	}
	removed, err := h.Sessions.Remove(ctx, sessionID, recipeID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	if !removed {
		respondError(c, services.ErrNotInList, cartErrors)
		return
	}
	utils.LogCartAction("remove", "session:"+sessionID, 1)
	c.Status(http.StatusNoContent)
}

// ============================================================================
// DOWNLOAD
// ============================================================================

// DownloadShoppingCart returns the aggregated ingredient list of the caller's
// cart as a plain text attachment.
func (h *CartHandler) DownloadShoppingCart(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		entries []models.CartEntry
		source  string
		owner   string
		err     error
	)

	if userID := middleware.GetUserID(c); userID != "" {
		source, owner = "user", userID
		entries, err = h.Carts.UserCartEntries(ctx, userID)
	} else {
		source = "session"
		if sessionID := middleware.GetSessionID(c); sessionID != "" {
			owner = "session:" + sessionID
			var recipeIDs []string
			recipeIDs, err = h.Sessions.RecipeIDs(ctx, sessionID)
			if err == nil && len(recipeIDs) > 0 {
				entries, err = h.Carts.RecipeCartEntries(ctx, recipeIDs)
			}
		}
	}
	if err != nil {
		respondError(c, err, nil)
		return
	}

	lines := services.AggregateCart(entries)
	report := services.RenderCartReport(lines)

	metrics.RecordShoppingCartReport(source, len(lines))
	utils.LogCartAction("download", owner, len(lines))

	c.Header("Content-Disposition", "attachment; filename="+services.ShoppingCartFilename)
	c.Data(http.StatusOK, "text/plain", []byte(report))
}
