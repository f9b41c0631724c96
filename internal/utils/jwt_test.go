package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestValidateAccessTokenSuccess(t *testing.T) {
	prev := jwtSecret
	t.Cleanup(func() { jwtSecret = prev })
	jwtSecret = []byte("secret-key")

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessTokenClaims{
		Username: "alice",
	}).SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	claims, err := ValidateAccessToken(tokenStr)
	if err != nil {
		t.Fatalf("expected valid token, got error %v", err)
	}
	if claims.Username != "alice" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestValidateAccessTokenInvalid(t *testing.T) {
	prev := jwtSecret
	t.Cleanup(func() { jwtSecret = prev })
	jwtSecret = []byte("secret-a")

	badToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessTokenClaims{
		Username: "u",
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := ValidateAccessToken(badToken); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestValidateAccessTokenUnexpectedMethod(t *testing.T) {
	prev := jwtSecret
	t.Cleanup(func() { jwtSecret = prev })
	jwtSecret = []byte("secret-a")

	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &AccessTokenClaims{
		Username: "u",
	}).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateAccessToken(tokenStr); err == nil || !strings.Contains(err.Error(), "unexpected signing method") {
		t.Fatalf("expected signing method error, got %v", err)
	}
}

func TestValidateAccessTokenExpired(t *testing.T) {
	prev := jwtSecret
	t.Cleanup(func() { jwtSecret = prev })
	jwtSecret = []byte("secret-b")

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessTokenClaims{
		Username: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateAccessToken(tokenStr); err == nil {
		t.Fatalf("expected expiration error")
	}
}

func TestValidateAccessTokenMissingUsername(t *testing.T) {
	prev := jwtSecret
	t.Cleanup(func() { jwtSecret = prev })
	jwtSecret = []byte("secret-c")

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessTokenClaims{}).SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateAccessToken(tokenStr); err == nil {
		t.Fatalf("expected missing username error")
	}
}

func TestTokenFromCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "abc123"})

	value, err := TokenFromCookie(req)
	if err != nil || value != "abc123" {
		t.Fatalf("unexpected result %q err=%v", value, err)
	}

	missing := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := TokenFromCookie(missing); err == nil {
		t.Fatalf("expected error for missing cookie")
	}

	empty := httptest.NewRequest(http.MethodGet, "/", nil)
	empty.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: ""})
	if _, err := TokenFromCookie(empty); err == nil {
		t.Fatalf("expected error for empty cookie")
	}
}

func TestLoggerMethods(t *testing.T) {
	logger := NewLogger()
	var buf strings.Builder
	logger.l.SetOutput(&buf)

	logger.Info("hi", "k", "v")
	logger.Warn("warn", "k2", "v2")
	logger.Error("err", "k3", "v3")

	output := buf.String()
	for _, needle := range []string{"INFO:", "WARN:", "ERROR:"} {
		if !strings.Contains(output, needle) {
			t.Fatalf("expected log output to contain %q; got %q", needle, output)
		}
	}
}
