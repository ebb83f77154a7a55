package routes

import (
	"github.com/LovationAdmin/foodgram-api/handlers"
	"github.com/LovationAdmin/foodgram-api/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every resource handler mounted under /api/v1.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Catalog *handlers.CatalogHandler
	Recipes *handlers.RecipeHandler
	Carts   *handlers.CartHandler
	Feed    *handlers.FeedHandler
}

// SetupAuthRoutes sets up signup and token issuance.
func SetupAuthRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.POST("/users", h.Auth.Signup)
	rg.POST("/auth/token/login", h.Auth.Login)
}

// SetupUserRoutes sets up profiles and subscriptions.
func SetupUserRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.GET("/users", middleware.OptionalAuth(), h.Users.ListUsers)
	rg.GET("/users/:id", middleware.OptionalAuth(), h.Users.GetUser)

	protected := rg.Group("/users")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/me", h.Users.Me)
		protected.POST("/set_password", h.Users.SetPassword)
		protected.GET("/subscriptions", h.Users.Subscriptions)
		protected.POST("/:id/subscribe", h.Users.Subscribe)
		protected.DELETE("/:id/subscribe", h.Users.Unsubscribe)
	}
}

// SetupCatalogRoutes sets up tags and ingredients. Writes are admin only.
func SetupCatalogRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.GET("/tags", h.Catalog.ListTags)
	rg.GET("/tags/:id", h.Catalog.GetTag)
	rg.GET("/ingredients", h.Catalog.ListIngredients)
	rg.GET("/ingredients/:id", h.Catalog.GetIngredient)

	admin := rg.Group("/")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())
	{
		admin.POST("/tags", h.Catalog.CreateTag)
		admin.PATCH("/tags/:id", h.Catalog.UpdateTag)
		admin.DELETE("/tags/:id", h.Catalog.DeleteTag)
		admin.POST("/ingredients", h.Catalog.CreateIngredient)
		admin.PATCH("/ingredients/:id", h.Catalog.UpdateIngredient)
		admin.DELETE("/ingredients/:id", h.Catalog.DeleteIngredient)
	}
}

// SetupRecipeRoutes sets up recipes, favorites, shopping carts and the
// shopping list download.
func SetupRecipeRoutes(rg *gin.RouterGroup, h Handlers) {
	// Anonymous callers may read recipes and use a session cart.
	public := rg.Group("/recipes")
	public.Use(middleware.OptionalAuth())
	{
		public.GET("", h.Recipes.ListRecipes)
		public.GET("/download_shopping_cart", h.Carts.DownloadShoppingCart)
		public.GET("/:id", h.Recipes.GetRecipe)
		public.POST("/:id/shopping_cart", h.Carts.AddToCart)
		public.DELETE("/:id/shopping_cart", h.Carts.RemoveFromCart)
	}

	protected := rg.Group("/recipes")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("", h.Recipes.CreateRecipe)
		protected.PATCH("/:id", h.Recipes.UpdateRecipe)
		protected.DELETE("/:id", h.Recipes.DeleteRecipe)
		protected.POST("/:id/favorite", h.Carts.AddFavorite)
		protected.DELETE("/:id/favorite", h.Carts.RemoveFavorite)
	}
}

// SetupFeedRoutes sets up the realtime feed. Browsers pass the token as ?token=.
func SetupFeedRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.GET("/ws/feed", middleware.AuthMiddleware(), h.Feed.HandleFeed)
}
