package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"sync"

	"github.com/LovationAdmin/foodgram-api/models"
	"github.com/LovationAdmin/foodgram-api/services"
	"github.com/LovationAdmin/foodgram-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ============================================================================
// SERVICE CONTRACTS
// ============================================================================

type UserStore interface {
	Create(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id, viewerID string) (*models.User, error)
	List(ctx context.Context, viewerID string, limit, offset int) ([]models.User, int, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	Subscribe(ctx context.Context, userID, authorID string) error
	Unsubscribe(ctx context.Context, userID, authorID string) error
	Subscriptions(ctx context.Context, userID string, recipesLimit, limit, offset int) ([]models.Subscription, int, error)
	Subscription(ctx context.Context, userID, authorID string, recipesLimit int) (*models.Subscription, error)
	FollowerIDs(ctx context.Context, authorID string) ([]string, error)
}

type CatalogStore interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id string) (*models.Tag, error)
	CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error)
	UpdateTag(ctx context.Context, tag models.Tag) (*models.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id string) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, ing models.Ingredient) (*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, ing models.Ingredient) (*models.Ingredient, error)
	DeleteIngredient(ctx context.Context, id string) error
}

type RecipeStore interface {
	List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, int, error)
	GetByID(ctx context.Context, id, viewerID string) (*models.Recipe, error)
	Create(ctx context.Context, authorID string, req models.RecipeRequest) (*models.Recipe, error)
	Update(ctx context.Context, recipeID, userID string, isAdmin bool, req models.RecipeRequest) (*models.Recipe, error)
	Delete(ctx context.Context, recipeID, userID string, isAdmin bool) error
}

type CartStore interface {
	AddTo(ctx context.Context, list services.RecipeList, userID, recipeID string) (*models.ShortRecipe, error)
	RemoveFrom(ctx context.Context, list services.RecipeList, userID, recipeID string) error
	ShortRecipe(ctx context.Context, recipeID string) (*models.ShortRecipe, error)
	UserCartEntries(ctx context.Context, userID string) ([]models.CartEntry, error)
	RecipeCartEntries(ctx context.Context, recipeIDs []string) ([]models.CartEntry, error)
}

// ============================================================================
// ERRORS
// ============================================================================

// respondError maps service errors to HTTP responses. msgs overrides the
// message used for a given sentinel.
func respondError(c *gin.Context, err error, msgs map[error]string) {
	status := http.StatusInternalServerError
	var sentinel error
	switch {
	case errors.Is(err, services.ErrNotFound):
		status, sentinel = http.StatusNotFound, services.ErrNotFound
	case errors.Is(err, services.ErrForbidden):
		status, sentinel = http.StatusForbidden, services.ErrForbidden
	case errors.Is(err, services.ErrAlreadyExists):
		status, sentinel = http.StatusBadRequest, services.ErrAlreadyExists
	case errors.Is(err, services.ErrNotInList):
		status, sentinel = http.StatusBadRequest, services.ErrNotInList
	case errors.Is(err, services.ErrSelfFollow):
		status, sentinel = http.StatusBadRequest, services.ErrSelfFollow
	case errors.Is(err, services.ErrInvalidReference):
		status, sentinel = http.StatusBadRequest, services.ErrInvalidReference
	}

	if sentinel == nil {
		utils.SafeError("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	msg := sentinel.Error()
	if custom, ok := msgs[sentinel]; ok {
		msg = custom
	}
	c.JSON(status, gin.H{"errors": msg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
}

// pathID returns the :id path parameter, answering 404 when it is not a UUID.
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"errors": "not found"})
		return "", false
	}
	return id, true
}

// ============================================================================
// PAGINATION
// ============================================================================

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

type pageParams struct {
	Page  int
	Limit int
}

func (p pageParams) Offset() int { return (p.Page - 1) * p.Limit }

func parsePage(c *gin.Context) pageParams {
	p := pageParams{Page: 1, Limit: defaultPageSize}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}

func pageLink(c *gin.Context, page int) *string {
	u := url.URL{Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}

func newPage[T any](c *gin.Context, p pageParams, results []T, count int) models.Page[T] {
	if results == nil {
		results = []T{}
	}
	page := models.Page[T]{Count: count, Results: results}
	if p.Offset()+len(results) < count {
		page.Next = pageLink(c, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = pageLink(c, p.Page-1)
	}
	return page
}

// ============================================================================
// VALIDATION
// ============================================================================

var (
	slugPattern        = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	registerValidators sync.Once
)

// RegisterValidators installs the custom binding tags used by the models.
func RegisterValidators() {
	registerValidators.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
}
