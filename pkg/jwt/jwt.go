package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret = errors.New("jwt: secret vacío")
	ErrNoUser      = errors.New("jwt: token sin user_id")
)

// Claims identidad precalculada que viaja en el token: usuario, rol y ubicaciones asignadas.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"user_id"`
	Role        string   `json:"role"`
	LocationIDs []string `json:"location_ids,omitempty"`
}

// Generate firma un token HS256 que vence en expMinutes.
func Generate(secret, userID, role string, locationIDs []string, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	issued := time.Now()
	expires := issued.Add(time.Duration(expMinutes) * time.Minute)
	c := &Claims{
		UserID:      userID,
		Role:        role,
		LocationIDs: locationIDs,
	}
	c.Issuer = issuer
	c.Subject = userID
	c.IssuedAt = jwt.NewNumericDate(issued)
	c.ExpiresAt = jwt.NewNumericDate(expires)

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// Parse verifica firma HS256 y vencimiento (obligatorio) y devuelve los claims.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	if claims.UserID == "" {
		return nil, ErrNoUser
	}
	return claims, nil
}
