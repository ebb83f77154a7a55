package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LovationAdmin/foodgram-api/handlers"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	h := Handlers{
		Auth:    &handlers.AuthHandler{},
		Users:   &handlers.UserHandler{},
		Catalog: &handlers.CatalogHandler{},
		Recipes: &handlers.RecipeHandler{},
		Carts:   &handlers.CartHandler{},
		Feed:    &handlers.FeedHandler{},
	}

	r := gin.New()
	r.Use(gin.Recovery())
	v1 := r.Group("/api/v1")
	SetupAuthRoutes(v1, h)
	SetupUserRoutes(v1, h)
	SetupCatalogRoutes(v1, h)
	SetupRecipeRoutes(v1, h)
	SetupFeedRoutes(v1, h)
	return r
}

func TestRoutes_Registered(t *testing.T) {
	r := newRouter()

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/v1/users",
		"POST /api/v1/auth/token/login",
		"GET /api/v1/users",
		"GET /api/v1/users/:id",
		"GET /api/v1/users/me",
		"POST /api/v1/users/set_password",
		"GET /api/v1/users/subscriptions",
		"POST /api/v1/users/:id/subscribe",
		"DELETE /api/v1/users/:id/subscribe",
		"GET /api/v1/tags",
		"GET /api/v1/tags/:id",
		"POST /api/v1/tags",
		"PATCH /api/v1/tags/:id",
		"DELETE /api/v1/tags/:id",
		"GET /api/v1/ingredients",
		"GET /api/v1/ingredients/:id",
		"POST /api/v1/ingredients",
		"PATCH /api/v1/ingredients/:id",
		"DELETE /api/v1/ingredients/:id",
		"GET /api/v1/recipes",
		"POST /api/v1/recipes",
		"GET /api/v1/recipes/download_shopping_cart",
		"GET /api/v1/recipes/:id",
		"PATCH /api/v1/recipes/:id",
		"DELETE /api/v1/recipes/:id",
		"POST /api/v1/recipes/:id/shopping_cart",
		"DELETE /api/v1/recipes/:id/shopping_cart",
		"POST /api/v1/recipes/:id/favorite",
		"DELETE /api/v1/recipes/:id/favorite",
		"GET /api/v1/ws/feed",
	}
	for _, route := range expected {
		if !registered[route] {
			t.Errorf("route %s is not registered", route)
		}
	}
	if len(registered) != len(expected) {
		t.Errorf("registered %d routes, want %d", len(registered), len(expected))
	}
}

// Static segments must win over the :id sibling they share a prefix with.
func TestRoutes_StaticSegmentsResolve(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes/download_shopping_cart", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("anonymous download: status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=foodgram_shopping_cart.txt" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "text/plain" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Body.Len() != 0 {
		t.Errorf("empty cart must give an empty report, got %q", w.Body.String())
	}

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodGet, "/api/v1/users/subscriptions"},
		{http.MethodPost, "/api/v1/users/set_password"},
		{http.MethodPost, "/api/v1/recipes"},
		{http.MethodPost, "/api/v1/recipes/0b6f7a52-8f5e-4d3a-9d7c-1f2e3a4b5c6d/favorite"},
		{http.MethodPost, "/api/v1/tags"},
		{http.MethodGet, "/api/v1/ws/feed"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401 from the protected group", w.Code)
			}
		})
	}
}
