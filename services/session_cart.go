package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SessionCartStore keeps the shopping carts of anonymous sessions. Recipe ids
// are returned in the order they were first added.
type SessionCartStore interface {
	Add(ctx context.Context, sessionID, recipeID string) (bool, error)
	Remove(ctx context.Context, sessionID, recipeID string) (bool, error)
	Contains(ctx context.Context, sessionID, recipeID string) (bool, error)
	RecipeIDs(ctx context.Context, sessionID string) ([]string, error)
}

// ============================================================================
// REDIS
// ============================================================================

const sessionCartKeyPrefix = "foodgram:cart:"

// addToSessionCart scores each new member with a per-session counter so
// ZRANGE returns recipes in the order they were added. Both keys get the
// cart TTL on every add.
var addToSessionCart = goredis.NewScript(`
local seq = redis.call('INCR', KEYS[2])
local added = redis.call('ZADD', KEYS[1], 'NX', seq, ARGV[1])
redis.call('EXPIRE', KEYS[1], ARGV[2])
redis.call('EXPIRE', KEYS[2], ARGV[2])
return added
`)

type RedisSessionCart struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisSessionCart connects to addr and verifies the connection.
func NewRedisSessionCart(ctx context.Context, addr, password string, ttl time.Duration) (*RedisSessionCart, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisSessionCart{rdb: rdb, ttl: ttl}, nil
}

func (c *RedisSessionCart) key(sessionID string) string {
	return sessionCartKeyPrefix + sessionID
}

func (c *RedisSessionCart) seqKey(sessionID string) string {
	return sessionCartKeyPrefix + sessionID + ":seq"
}

func (c *RedisSessionCart) ttlSeconds() int64 {
	secs := int64(c.ttl / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

func (c *RedisSessionCart) Add(ctx context.Context, sessionID, recipeID string) (bool, error) {
	keys := []string{c.key(sessionID), c.seqKey(sessionID)}
	n, err := addToSessionCart.Run(ctx, c.rdb, keys, recipeID, c.ttlSeconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis add to session cart: %w", err)
	}
	return n > 0, nil
}

func (c *RedisSessionCart) Remove(ctx context.Context, sessionID, recipeID string) (bool, error) {
	n, err := c.rdb.ZRem(ctx, c.key(sessionID), recipeID).Result()
	if err != nil {
		return false, fmt.Errorf("redis remove from session cart: %w", err)
	}
	return n > 0, nil
}

func (c *RedisSessionCart) Contains(ctx context.Context, sessionID, recipeID string) (bool, error) {
	err := c.rdb.ZScore(ctx, c.key(sessionID), recipeID).Err()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis session cart lookup: %w", err)
	}
	return true, nil
}

func (c *RedisSessionCart) RecipeIDs(ctx context.Context, sessionID string) ([]string, error) {
	ids, err := c.rdb.ZRange(ctx, c.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read session cart: %w", err)
	}
	return ids, nil
}

func (c *RedisSessionCart) Close() error {
	return c.rdb.Close()
}

// ============================================================================
// IN-MEMORY
// ============================================================================

type memoryCart struct {
	recipeIDs []string
	expiresAt time.Time
}

// MemorySessionCart is a process-local SessionCartStore used when no Redis
// address is configured. Carts expire ttl after their last change.
type MemorySessionCart struct {
	mu    sync.Mutex
	carts map[string]*memoryCart
	ttl   time.Duration
	now   func() time.Time
}

func NewMemorySessionCart(ttl time.Duration) *MemorySessionCart {
	return &MemorySessionCart{
		carts: make(map[string]*memoryCart),
		ttl:   ttl,
		now:   time.Now,
	}
}

// live returns the session's cart, dropping it first if it expired. Callers hold mu.
func (c *MemorySessionCart) live(sessionID string) *memoryCart {
	cart, ok := c.carts[sessionID]
	if !ok {
		return nil
	}
	if c.now().After(cart.expiresAt) {
		delete(c.carts, sessionID)
		return nil
	}
	return cart
}

func (c *MemorySessionCart) Add(_ context.Context, sessionID, recipeID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart := c.live(sessionID)
	if cart == nil {
		cart = &memoryCart{}
		c.carts[sessionID] = cart
	}
	cart.expiresAt = c.now().Add(c.ttl)

	for _, id := range cart.recipeIDs {
		if id == recipeID {
			return false, nil
		}
	}
	cart.recipeIDs = append(cart.recipeIDs, recipeID)
	return true, nil
}

func (c *MemorySessionCart) Remove(_ context.Context, sessionID, recipeID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart := c.live(sessionID)
	if cart == nil {
		return false, nil
	}
	for i, id := range cart.recipeIDs {
		if id == recipeID {
			cart.recipeIDs = append(cart.recipeIDs[:i], cart.recipeIDs[i+1:]...)
			cart.expiresAt = c.now().Add(c.ttl)
			return true, nil
		}
	}
	return false, nil
}

func (c *MemorySessionCart) Contains(_ context.Context, sessionID, recipeID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart := c.live(sessionID)
	if cart == nil {
		return false, nil
	}
	for _, id := range cart.recipeIDs {
		if id == recipeID {
			return true, nil
		}
	}
	return false, nil
}

func (c *MemorySessionCart) RecipeIDs(_ context.Context, sessionID string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart := c.live(sessionID)
	if cart == nil {
		return []string{}, nil
	}
	ids := make([]string, len(cart.recipeIDs))
	copy(ids, cart.recipeIDs)
	return ids, nil
}

// Cleanup drops expired carts.
func (c *MemorySessionCart) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for id, cart := range c.carts {
		if now.After(cart.expiresAt) {
			delete(c.carts, id)
			removed++
		}
	}
	return removed
}
