package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

func InitDB(cfg *Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrations are idempotent and applied in order on every start.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(254) UNIQUE NOT NULL,
		username VARCHAR(150) UNIQUE NOT NULL,
		first_name VARCHAR(150) NOT NULL,
		last_name VARCHAR(150) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS tags (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(200) UNIQUE NOT NULL,
		color VARCHAR(7) UNIQUE NOT NULL,
		slug VARCHAR(100) UNIQUE NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS ingredients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(150) NOT NULL,
		measurement_unit VARCHAR(100) NOT NULL,
		UNIQUE(name, measurement_unit)
	)`,

	`CREATE TABLE IF NOT EXISTS recipes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		text VARCHAR(250) NOT NULL,
		cooking_time SMALLINT NOT NULL CHECK (cooking_time BETWEEN 1 AND 100),
		pub_date TIMESTAMP NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS recipe_ingredients (
		id BIGSERIAL PRIMARY KEY,
		recipe_id UUID NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		ingredient_id UUID NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
		amount SMALLINT NOT NULL CHECK (amount BETWEEN 1 AND 3000),
		UNIQUE(recipe_id, ingredient_id)
	)`,

	`CREATE TABLE IF NOT EXISTS recipe_tags (
		recipe_id UUID NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		tag_id UUID NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (recipe_id, tag_id)
	)`,

	`CREATE TABLE IF NOT EXISTS favorites (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		recipe_id UUID NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, recipe_id)
	)`,

	`CREATE TABLE IF NOT EXISTS shopping_carts (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		recipe_id UUID NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, recipe_id)
	)`,

	`CREATE TABLE IF NOT EXISTS follows (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, author_id),
		CHECK (user_id <> author_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_recipes_author_id ON recipes(author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_pub_date ON recipes(pub_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe_id ON recipe_ingredients(recipe_id)`,
	`CREATE INDEX IF NOT EXISTS idx_recipe_tags_tag_id ON recipe_tags(tag_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients(LOWER(name) text_pattern_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_shopping_carts_user_id ON shopping_carts(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON favorites(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_follows_author_id ON follows(author_id)`,
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
