package handlers

import (
	"net/http"

	"github.com/LovationAdmin/foodgram-api/models"
	"github.com/LovationAdmin/foodgram-api/services"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves tags and ingredients.
type CatalogHandler struct {
	Catalog CatalogStore
}

func NewCatalogHandler(catalog CatalogStore) *CatalogHandler {
	RegisterValidators()
	return &CatalogHandler{Catalog: catalog}
}

// ============================================================================
// TAGS
// ============================================================================

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.Catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tag, err := h.Catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var tag models.Tag
	if err := c.ShouldBindJSON(&tag); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.Catalog.CreateTag(c.Request.Context(), tag)
	if err != nil {
		respondError(c, err, map[error]string{
			services.ErrAlreadyExists: "A tag with that name, color or slug already exists",
		})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) UpdateTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var tag models.Tag
	if err := c.ShouldBindJSON(&tag); err != nil {
		badRequest(c, err)
		return
	}
	tag.ID = id
	updated, err := h.Catalog.UpdateTag(c.Request.Context(), tag)
	if err != nil {
		respondError(c, err, map[error]string{
			services.ErrAlreadyExists: "A tag with that name, color or slug already exists",
		})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CatalogHandler) DeleteTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteTag(c.Request.Context(), id); err != nil {
		respondError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// ============================================================================
// INGREDIENTS
// ============================================================================

// ListIngredients supports a case-insensitive ?name= prefix filter.
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.Catalog.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ing, err := h.Catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var ing models.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.Catalog.CreateIngredient(c.Request.Context(), ing)
	if err != nil {
		respondError(c, err, map[error]string{
			services.ErrAlreadyExists: "This ingredient already exists with that measurement unit",
		})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CatalogHandler) UpdateIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var ing models.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		badRequest(c, err)
		return
	}
	ing.ID = id
	updated, err := h.Catalog.UpdateIngredient(c.Request.Context(), ing)
	if err != nil {
		respondError(c, err, map[error]string{
			services.ErrAlreadyExists: "This ingredient already exists with that measurement unit",
		})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CatalogHandler) DeleteIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteIngredient(c.Request.Context(), id); err != nil {
		respondError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}
