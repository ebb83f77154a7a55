package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/LovationAdmin/foodgram-api/models"
)

// CatalogService manages the admin-curated tags and ingredients.
type CatalogService struct {
	db *sql.DB
}

func NewCatalogService(db *sql.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ============================================================================
// TAGS
// ============================================================================

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *CatalogService) GetTag(ctx context.Context, id string) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, color, slug FROM tags WHERE id = $1
	`, id).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	return &tag, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	tag.Color = strings.ToUpper(tag.Color)
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (name, color, slug) VALUES ($1, $2, $3) RETURNING id
	`, tag.Name, tag.Color, tag.Slug).Scan(&tag.ID)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

func (s *CatalogService) UpdateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	tag.Color = strings.ToUpper(tag.Color)
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags SET name = $1, color = $2, slug = $3 WHERE id = $4
	`, tag.Name, tag.Color, tag.Slug, tag.ID)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &tag, nil
}

func (s *CatalogService) DeleteTag(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "tags", id)
}

// ============================================================================
// INGREDIENTS
// ============================================================================

// ListIngredients returns ingredients whose name starts with prefix, case-insensitively.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, measurement_unit
		FROM ingredients
		WHERE LOWER(name) LIKE LOWER($1) || '%'
		ORDER BY name, measurement_unit
	`, escapeLike(strings.TrimSpace(prefix)))
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []models.Ingredient{}
	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

func (s *CatalogService) GetIngredient(ctx context.Context, id string) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, measurement_unit FROM ingredients WHERE id = $1
	`, id).Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient: %w", err)
	}
	return &ing, nil
}

func (s *CatalogService) CreateIngredient(ctx context.Context, ing models.Ingredient) (*models.Ingredient, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2) RETURNING id
	`, ing.Name, ing.MeasurementUnit).Scan(&ing.ID)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return &ing, nil
}

func (s *CatalogService) UpdateIngredient(ctx context.Context, ing models.Ingredient) (*models.Ingredient, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ingredients SET name = $1, measurement_unit = $2 WHERE id = $3
	`, ing.Name, ing.MeasurementUnit, ing.ID)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &ing, nil
}

func (s *CatalogService) DeleteIngredient(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "ingredients", id)
}

// deleteByID is only called with the constant table names above.
func (s *CatalogService) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
