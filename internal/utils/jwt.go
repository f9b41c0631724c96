package utils

import (
	"errors"
	"net/http"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenCookie carries the signed credential on the WebSocket handshake.
const AccessTokenCookie = "x-access-token"

var jwtSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key" // Default for development
	}
	jwtSecret = []byte(secret)
}

// AccessTokenClaims represents the claims in a signed access token.
type AccessTokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ValidateAccessToken validates a JWT access token and returns its claims.
func ValidateAccessToken(tokenString string) (*AccessTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	claims := token.Claims.(*AccessTokenClaims)
	if claims.Username == "" {
		return nil, errors.New("token missing username claim")
	}
	return claims, nil
}

// TokenFromCookie extracts the access token from the handshake request cookie.
func TokenFromCookie(r *http.Request) (string, error) {
	c, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return "", errors.New("access token cookie missing")
	}
	if c.Value == "" {
		return "", errors.New("access token cookie empty")
	}
	return c.Value, nil
}
