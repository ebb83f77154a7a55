package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultAccessTokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

var (
	jwtMu    sync.RWMutex
	jwtKey   []byte
	tokenTTL = defaultAccessTokenTTL
)

// Claims carried by an access token.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// InitJWT sets the signing secret and the access token lifetime. An empty
// secret is replaced by a random key that lives as long as the process, so
// tokens stop validating after a restart. A non-positive ttl keeps the default.
func InitJWT(secret string, ttl time.Duration) {
	key := []byte(secret)
	if secret == "" {
		key = randomKey()
		SafeWarn("JWT_SECRET not set, signing tokens with a random per-process key")
	}
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}

	jwtMu.Lock()
	defer jwtMu.Unlock()
	jwtKey = key
	tokenTTL = ttl
}

func randomKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("jwt: read random key: %v", err))
	}
	return key
}

func signingParams() ([]byte, time.Duration) {
	jwtMu.RLock()
	key, ttl := jwtKey, tokenTTL
	jwtMu.RUnlock()
	if key != nil {
		return key, ttl
	}

	jwtMu.Lock()
	defer jwtMu.Unlock()
	if jwtKey == nil {
		SafeWarn("JWT not initialised, signing tokens with a random per-process key")
		jwtKey = randomKey()
	}
	return jwtKey, tokenTTL
}

// GenerateAccessToken signs an HS256 token for the given user.
func GenerateAccessToken(userID, email string, isAdmin bool) (string, error) {
	secret, ttl := signingParams()

	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccessToken validates the signature and expiry of tokenString.
func ParseAccessToken(tokenString string) (*Claims, error) {
	secret, _ := signingParams()

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
