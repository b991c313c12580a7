package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid  = errors.New("invalid token")
	ErrSecretMissing = errors.New("jwt secret is not configured")
)

// Claims - полезная нагрузка access-токена
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	mu        sync.RWMutex
	jwtSecret []byte
	tokenTTL  = 24 * time.Hour
)

// Init задает секрет и время жизни токенов. Вызывается один раз при старте.
func Init(secret string, ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	jwtSecret = []byte(secret)
	if ttl > 0 {
		tokenTTL = ttl
	}
}

func TokenTTL() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return tokenTTL
}

// GenerateToken подписывает HS256 токен для пользователя
func GenerateToken(userID, role string) (string, error) {
	mu.RLock()
	secret, ttl := jwtSecret, tokenTTL
	mu.RUnlock()

	if len(secret) == 0 {
		return "", ErrSecretMissing
	}

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken проверяет подпись и срок действия токена
func ParseToken(tokenStr string) (*Claims, error) {
	mu.RLock()
	secret := jwtSecret
	mu.RUnlock()

	if len(secret) == 0 {
		return nil, ErrSecretMissing
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
