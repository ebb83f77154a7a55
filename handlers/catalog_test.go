package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/LovationAdmin/foodgram-api/middleware"
	"github.com/LovationAdmin/foodgram-api/models"
	"github.com/LovationAdmin/foodgram-api/services"
	"github.com/LovationAdmin/foodgram-api/utils"

	"github.com/gin-gonic/gin"
)

type fakeCatalog struct {
	tags        []models.Tag
	ingredients []models.Ingredient
}

func (f *fakeCatalog) ListTags(context.Context) ([]models.Tag, error) { return f.tags, nil }

func (f *fakeCatalog) GetTag(_ context.Context, id string) (*models.Tag, error) {
	for _, t := range f.tags {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, services.ErrNotFound
}

func (f *fakeCatalog) CreateTag(_ context.Context, tag models.Tag) (*models.Tag, error) {
	for _, t := range f.tags {
		if t.Slug == tag.Slug {
			return nil, services.ErrAlreadyExists
		}
	}
	tag.ID = tagLunch
	f.tags = append(f.tags, tag)
	return &tag, nil
}

func (f *fakeCatalog) UpdateTag(_ context.Context, tag models.Tag) (*models.Tag, error) {
	return &tag, nil
}

func (f *fakeCatalog) DeleteTag(_ context.Context, id string) error {
	if _, err := f.GetTag(context.Background(), id); err != nil {
		return err
	}
	return nil
}

func (f *fakeCatalog) ListIngredients(_ context.Context, prefix string) ([]models.Ingredient, error) {
	out := []models.Ingredient{}
	for _, ing := range f.ingredients {
		if strings.HasPrefix(strings.ToLower(ing.Name), strings.ToLower(prefix)) {
			out = append(out, ing)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetIngredient(_ context.Context, id string) (*models.Ingredient, error) {
	for _, ing := range f.ingredients {
		if ing.ID == id {
			return &ing, nil
		}
	}
	return nil, services.ErrNotFound
}

func (f *fakeCatalog) CreateIngredient(_ context.Context, ing models.Ingredient) (*models.Ingredient, error) {
	ing.ID = ingSugar
	f.ingredients = append(f.ingredients, ing)
	return &ing, nil
}

func (f *fakeCatalog) UpdateIngredient(_ context.Context, ing models.Ingredient) (*models.Ingredient, error) {
	return &ing, nil
}

func (f *fakeCatalog) DeleteIngredient(_ context.Context, id string) error {
	_, err := f.GetIngredient(context.Background(), id)
	return err
}

func newCatalogRouter(catalog *fakeCatalog) *gin.Engine {
	h := NewCatalogHandler(catalog)
	r := gin.New()

	public := r.Group("/api/v1")
	public.GET("/tags", h.ListTags)
	public.GET("/tags/:id", h.GetTag)
	public.GET("/ingredients", h.ListIngredients)
	public.GET("/ingredients/:id", h.GetIngredient)

	admin := r.Group("/api/v1")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())
	admin.POST("/tags", h.CreateTag)
	admin.POST("/ingredients", h.CreateIngredient)
	admin.DELETE("/ingredients/:id", h.DeleteIngredient)
	return r
}

func TestCreateTag(t *testing.T) {
	utils.InitJWT("handlers-test-secret", 0)
	r := newCatalogRouter(&fakeCatalog{})
	admin := withAuth(bearer(t, otherID, true))

	tests := []struct {
		name       string
		auth       requestOpt
		body       gin.H
		wantStatus int
	}{
		{"non admin", withAuth(bearer(t, cookID, false)), gin.H{"name": "Lunch", "color": "#E26C2D", "slug": "lunch"}, http.StatusForbidden},
		{"valid", admin, gin.H{"name": "Lunch", "color": "#E26C2D", "slug": "lunch"}, http.StatusCreated},
		{"duplicate slug", admin, gin.H{"name": "Lunch 2", "color": "#000000", "slug": "lunch"}, http.StatusBadRequest},
		{"slug with spaces", admin, gin.H{"name": "Dinner", "color": "#49B64E", "slug": "late dinner"}, http.StatusBadRequest},
		{"short color", admin, gin.H{"name": "Dinner", "color": "#FFF", "slug": "dinner"}, http.StatusBadRequest},
		{"not a color", admin, gin.H{"name": "Dinner", "color": "orange!", "slug": "dinner"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/tags", tt.auth, jsonBody(t, tt.body))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestListIngredients_PrefixFilter(t *testing.T) {
	catalog := &fakeCatalog{ingredients: []models.Ingredient{
		{ID: ingFlour, Name: "Flour", MeasurementUnit: "g"},
		{ID: ingSugar, Name: "Sugar", MeasurementUnit: "g"},
	}}
	r := newCatalogRouter(catalog)

	w := do(r, http.MethodGet, "/api/v1/ingredients?name=fl")
	var got []models.Ingredient
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Flour" {
		t.Errorf("ingredients = %+v, want only Flour", got)
	}

	if w := do(r, http.MethodGet, "/api/v1/ingredients/"+ingSugar); w.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/ingredients/"+recipeGone); w.Code != http.StatusNotFound {
		t.Errorf("missing ingredient status = %d, want 404", w.Code)
	}
}

func TestGetTag_NotFound(t *testing.T) {
	r := newCatalogRouter(&fakeCatalog{})
	if w := do(r, http.MethodGet, "/api/v1/tags/"+tagLunch); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
