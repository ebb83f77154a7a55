package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/LovationAdmin/foodgram-api/models"
	"github.com/LovationAdmin/foodgram-api/utils"
)

type UserService struct {
	db *sql.DB
}

func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// userColumns selects a user row plus is_subscribed for the viewer bound to $1.
const userColumns = `
	u.id, u.email, u.username, u.first_name, u.last_name,
	EXISTS(
		SELECT 1 FROM follows f
		WHERE f.user_id = NULLIF($1::text, '')::uuid AND f.author_id = u.id
	) AS is_subscribed`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner, user *models.User) error {
	return row.Scan(&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName, &user.IsSubscribed)
}

// Create registers a user with a bcrypt password hash.
func (s *UserService) Create(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Username:  strings.TrimSpace(req.Username),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, username, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, user.Email, user.Username, user.FirstName, user.LastName, hash).Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user owning email when password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, username, first_name, last_name, password_hash, is_admin
		FROM users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(
		&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.IsAdmin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrNotFound
	}
	return &user, nil
}

// GetByID loads a user; is_subscribed is computed for viewerID.
func (s *UserService) GetByID(ctx context.Context, id, viewerID string) (*models.User, error) {
	var user models.User
	err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		WHERE u.id = $2
	`, viewerID, id), &user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// List returns one page of users ordered by username and the total count.
func (s *UserService) List(ctx context.Context, viewerID string, limit, offset int) ([]models.User, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		ORDER BY u.username
		LIMIT $2 OFFSET $3
	`, viewerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load password: %w", err)
	}
	if !utils.CheckPassword(current, hash) {
		return ErrForbidden
	}

	newHash, err := utils.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, newHash, userID)
	return err
}

// ============================================================================
// SUBSCRIPTIONS
// ============================================================================

// Subscribe makes userID follow authorID.
func (s *UserService) Subscribe(ctx context.Context, userID, authorID string) error {
	if userID == authorID {
		return ErrSelfFollow
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, authorID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check author: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (user_id, author_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, author_id) DO NOTHING
	`, userID, authorID)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Unsubscribe removes the follow relation.
func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM follows WHERE user_id = $1 AND author_id = $2
	`, userID, authorID)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotInList
	}
	return nil
}

// Subscriptions returns one page of the authors followed by userID.
// recipesLimit <= 0 means every recipe of each author is included.
func (s *UserService) Subscriptions(ctx context.Context, userID string, recipesLimit, limit, offset int) ([]models.Subscription, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM follows WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM follows fl
		JOIN users u ON u.id = fl.author_id
		WHERE fl.user_id = $2
		ORDER BY fl.created_at DESC
		LIMIT $3 OFFSET $4
	`, userID, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	var authors []models.User
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			rows.Close()
			return nil, 0, err
		}
		authors = append(authors, user)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	subs := make([]models.Subscription, 0, len(authors))
	for _, author := range authors {
		sub, err := s.withRecipes(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *sub)
	}
	return subs, total, nil
}

// Subscription returns a single followed author as a subscription view.
func (s *UserService) Subscription(ctx context.Context, userID, authorID string, recipesLimit int) (*models.Subscription, error) {
	author, err := s.GetByID(ctx, authorID, userID)
	if err != nil {
		return nil, err
	}
	return s.withRecipes(ctx, *author, recipesLimit)
}

func (s *UserService) withRecipes(ctx context.Context, author models.User, recipesLimit int) (*models.Subscription, error) {
	sub := &models.Subscription{User: author, Recipes: []models.ShortRecipe{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes WHERE author_id = $1`, author.ID).Scan(&sub.RecipesCount); err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	var limit interface{}
	if recipesLimit > 0 {
		limit = recipesLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, image, cooking_time
		FROM recipes
		WHERE author_id = $1
		ORDER BY pub_date DESC
		LIMIT $2
	`, author.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list author recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.ShortRecipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Image, &r.CookingTime); err != nil {
			return nil, err
		}
		sub.Recipes = append(sub.Recipes, r)
	}
	return sub, rows.Err()
}

// FollowerIDs returns the ids of every user following authorID.
func (s *UserService) FollowerIDs(ctx context.Context, authorID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM follows WHERE author_id = $1`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
