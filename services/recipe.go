package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/LovationAdmin/foodgram-api/models"
	"github.com/LovationAdmin/foodgram-api/utils"

	"github.com/lib/pq"
)

type RecipeService struct {
	db *sql.DB
}

func NewRecipeService(db *sql.DB) *RecipeService {
	return &RecipeService{db: db}
}

// recipeColumns selects a recipe, its author and the viewer flags. The
// viewer id is always bound to $1.
const recipeColumns = `
	r.id, r.name, r.image, r.text, r.cooking_time, r.pub_date,
	u.id, u.email, u.username, u.first_name, u.last_name,
	EXISTS(
		SELECT 1 FROM follows f
		WHERE f.user_id = NULLIF($1::text, '')::uuid AND f.author_id = u.id
	),
	EXISTS(
		SELECT 1 FROM favorites fv
		WHERE fv.user_id = NULLIF($1::text, '')::uuid AND fv.recipe_id = r.id
	),
	EXISTS(
		SELECT 1 FROM shopping_carts sc
		WHERE sc.user_id = NULLIF($1::text, '')::uuid AND sc.recipe_id = r.id
	)`

func scanRecipe(row rowScanner) (models.Recipe, error) {
	var r models.Recipe
	err := row.Scan(
		&r.ID, &r.Name, &r.Image, &r.Text, &r.CookingTime, &r.PubDate,
		&r.Author.ID, &r.Author.Email, &r.Author.Username, &r.Author.FirstName, &r.Author.LastName,
		&r.Author.IsSubscribed, &r.IsFavorited, &r.IsInShoppingCart,
	)
	return r, err
}

// queryArgs numbers positional parameters as they are added.
type queryArgs struct {
	values []interface{}
	viewer string
}

func (q *queryArgs) add(v interface{}) string {
	q.values = append(q.values, v)
	return fmt.Sprintf("$%d", len(q.values))
}

// viewerRef binds the viewer id once and returns its placeholder.
func (q *queryArgs) viewerRef(viewerID string) string {
	if q.viewer == "" {
		q.viewer = q.add(viewerID)
	}
	return q.viewer
}

func recipeConditions(filter models.RecipeFilter, q *queryArgs) string {
	var where []string
	if filter.AuthorID != "" {
		where = append(where, "r.author_id = "+q.add(filter.AuthorID))
	}
	if len(filter.TagSlugs) > 0 {
		where = append(where, fmt.Sprintf(`EXISTS(
			SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(%s)
		)`, q.add(pq.Array(filter.TagSlugs))))
	}
	if filter.IsFavorited {
		where = append(where, fmt.Sprintf(`EXISTS(
			SELECT 1 FROM favorites fv
			WHERE fv.user_id = NULLIF(%s::text, '')::uuid AND fv.recipe_id = r.id
		)`, q.viewerRef(filter.ViewerID)))
	}
	if filter.IsInShoppingCart {
		where = append(where, fmt.Sprintf(`EXISTS(
			SELECT 1 FROM shopping_carts sc
			WHERE sc.user_id = NULLIF(%s::text, '')::uuid AND sc.recipe_id = r.id
		)`, q.viewerRef(filter.ViewerID)))
	}
	if len(where) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(where, " AND ")
}

// List returns one page of recipes matching filter, newest first, and the total count.
func (s *RecipeService) List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, int, error) {
	countArgs := &queryArgs{}
	countClause := recipeConditions(filter, countArgs)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes r `+countClause,
		countArgs.values...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	// recipeColumns expects the viewer at $1.
	args := &queryArgs{}
	args.viewerRef(filter.ViewerID)
	clause := recipeConditions(filter, args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM recipes r
		JOIN users u ON u.id = r.author_id
		%s
		ORDER BY r.pub_date DESC, r.id
		LIMIT %s OFFSET %s
	`, recipeColumns, clause, args.add(filter.Limit), args.add(filter.Offset))

	rows, err := s.db.QueryContext(ctx, query, args.values...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := []models.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		recipes = append(recipes, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.loadDetails(ctx, recipes); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// GetByID loads a full recipe as seen by viewerID.
func (s *RecipeService) GetByID(ctx context.Context, id, viewerID string) (*models.Recipe, error) {
	r, err := scanRecipe(s.db.QueryRowContext(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes r
		JOIN users u ON u.id = r.author_id
		WHERE r.id = $2
	`, viewerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	recipes := []models.Recipe{r}
	if err := s.loadDetails(ctx, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// loadDetails fills tags and ingredients of recipes with two batched queries.
func (s *RecipeService) loadDetails(ctx context.Context, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]string, len(recipes))
	byID := make(map[string]*models.Recipe, len(recipes))
	for i := range recipes {
		recipes[i].Tags = []models.Tag{}
		recipes[i].Ingredients = []models.RecipeIngredient{}
		ids[i] = recipes[i].ID
		byID[recipes[i].ID] = &recipes[i]
	}

	tagRows, err := s.db.QueryContext(ctx, `
		SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1::uuid[])
		ORDER BY t.name
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load recipe tags: %w", err)
	}
	for tagRows.Next() {
		var recipeID string
		var tag models.Tag
		if err := tagRows.Scan(&recipeID, &tag.ID, &tag.Name, &tag.Color, &tag.Slug); err != nil {
			tagRows.Close()
			return err
		}
		byID[recipeID].Tags = append(byID[recipeID].Tags, tag)
	}
	tagRows.Close()
	if err := tagRows.Err(); err != nil {
		return err
	}

	ingRows, err := s.db.QueryContext(ctx, `
		SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY($1::uuid[])
		ORDER BY ri.id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load recipe ingredients: %w", err)
	}
	defer ingRows.Close()
	for ingRows.Next() {
		var recipeID string
		var ing models.RecipeIngredient
		if err := ingRows.Scan(&recipeID, &ing.ID, &ing.Name, &ing.MeasurementUnit, &ing.Amount); err != nil {
			return err
		}
		byID[recipeID].Ingredients = append(byID[recipeID].Ingredients, ing)
	}
	return ingRows.Err()
}

// Create stores a recipe with its ingredients and tags in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID string, req models.RecipeRequest) (*models.Recipe, error) {
	var recipeID string
	err := utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO recipes (author_id, name, image, text, cooking_time)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, authorID, req.Name, req.Image, req.Text, req.CookingTime).Scan(&recipeID); err != nil {
			return err
		}
		return writeComposition(ctx, tx, recipeID, req)
	})
	if isForeignKeyViolation(err) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	utils.LogRecipeAction("created", recipeID, authorID)
	return s.GetByID(ctx, recipeID, authorID)
}

// Update replaces a recipe's fields, ingredients and tags. Only the author
// or an admin may update.
func (s *RecipeService) Update(ctx context.Context, recipeID, userID string, isAdmin bool, req models.RecipeRequest) (*models.Recipe, error) {
	if err := s.checkOwnership(ctx, recipeID, userID, isAdmin); err != nil {
		return nil, err
	}

	err := utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE recipes
			SET name = $1, image = $2, text = $3, cooking_time = $4
			WHERE id = $5
		`, req.Name, req.Image, req.Text, req.CookingTime, recipeID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipeID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipeID); err != nil {
			return err
		}
		return writeComposition(ctx, tx, recipeID, req)
	})
	if isForeignKeyViolation(err) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	utils.LogRecipeAction("updated", recipeID, userID)
	return s.GetByID(ctx, recipeID, userID)
}

// Delete removes a recipe; favorites, carts and composition cascade.
func (s *RecipeService) Delete(ctx context.Context, recipeID, userID string, isAdmin bool) error {
	if err := s.checkOwnership(ctx, recipeID, userID, isAdmin); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, recipeID); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	utils.LogRecipeAction("deleted", recipeID, userID)
	return nil
}

func (s *RecipeService) checkOwnership(ctx context.Context, recipeID, userID string, isAdmin bool) error {
	var authorID string
	err := s.db.QueryRowContext(ctx, `SELECT author_id FROM recipes WHERE id = $1`, recipeID).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load recipe author: %w", err)
	}
	if authorID != userID && !isAdmin {
		return ErrForbidden
	}
	return nil
}

func writeComposition(ctx context.Context, tx *sql.Tx, recipeID string, req models.RecipeRequest) error {
	for _, ing := range req.Ingredients {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount)
			VALUES ($1, $2, $3)
		`, recipeID, ing.ID, ing.Amount); err != nil {
			return err
		}
	}
	for _, tagID := range req.Tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2)
		`, recipeID, tagID); err != nil {
			return err
		}
	}
	return nil
}
