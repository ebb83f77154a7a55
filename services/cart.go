package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LovationAdmin/foodgram-api/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RecipeList is a per-user collection of recipes.
type RecipeList string

const (
	Favorites    RecipeList = "favorites"
	ShoppingCart RecipeList = "shopping_carts"
)

func (l RecipeList) table() (string, error) {
	switch l {
	case Favorites, ShoppingCart:
		return string(l), nil
	}
	return "", fmt.Errorf("unknown recipe list %q", string(l))
}

// CartService owns favorites, persisted shopping carts and the cart entries
// fed into the shopping cart report.
type CartService struct {
	db *sql.DB
}

func NewCartService(db *sql.DB) *CartService {
	return &CartService{db: db}
}

// AddTo puts recipeID into the user's list and returns the recipe's short view.
func (s *CartService) AddTo(ctx context.Context, list RecipeList, userID, recipeID string) (*models.ShortRecipe, error) {
	table, err := list.table()
	if err != nil {
		return nil, err
	}

	recipe, err := s.ShortRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO `+table+` (user_id, recipe_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, recipe_id) DO NOTHING
	`, userID, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to add to %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrAlreadyExists
	}
	return recipe, nil
}

// RemoveFrom takes recipeID out of the user's list.
func (s *CartService) RemoveFrom(ctx context.Context, list RecipeList, userID, recipeID string) error {
	table, err := list.table()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM `+table+` WHERE user_id = $1 AND recipe_id = $2
	`, userID, recipeID)
	if err != nil {
		return fmt.Errorf("failed to remove from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotInList
	}
	return nil
}

// ShortRecipe returns the compact view of a recipe.
func (s *CartService) ShortRecipe(ctx context.Context, recipeID string) (*models.ShortRecipe, error) {
	var r models.ShortRecipe
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, image, cooking_time FROM recipes WHERE id = $1
	`, recipeID).Scan(&r.ID, &r.Name, &r.Image, &r.CookingTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &r, nil
}

// UserCartEntries returns every ingredient line of the recipes in the user's
// persisted cart, in the order the recipes were added.
func (s *CartService) UserCartEntries(ctx context.Context, userID string) ([]models.CartEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.name, i.measurement_unit, ri.amount
		FROM shopping_carts sc
		JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE sc.user_id = $1
		ORDER BY sc.created_at, sc.id, ri.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart entries: %w", err)
	}
	return scanCartEntries(rows)
}

// RecipeCartEntries returns the ingredient lines of recipeIDs in the given
// order. Ids that are not UUIDs are ignored.
func (s *CartService) RecipeCartEntries(ctx context.Context, recipeIDs []string) ([]models.CartEntry, error) {
	ids := make([]string, 0, len(recipeIDs))
	for _, id := range recipeIDs {
		if _, err := uuid.Parse(id); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []models.CartEntry{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY($1::uuid[])
		ORDER BY array_position($1::uuid[], ri.recipe_id), ri.id
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load session cart entries: %w", err)
	}
	return scanCartEntries(rows)
}

func scanCartEntries(rows *sql.Rows) ([]models.CartEntry, error) {
	defer rows.Close()

	entries := []models.CartEntry{}
	for rows.Next() {
		var e models.CartEntry
		if err := rows.Scan(&e.Name, &e.MeasurementUnit, &e.Amount); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
