package service

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/alert-bridge/backend/internal/config"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}

	svc, err := NewAuthService(config.AuthConfig{
		JWTSecret:         "test-secret",
		JWTAccessTTL:      "15m",
		AdminLoginID:      "admin",
		AdminPasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("NewAuthService() error = %v", err)
	}
	return svc
}

func TestNewAuthServiceValidation(t *testing.T) {
	if _, err := NewAuthService(config.AuthConfig{JWTAccessTTL: "15m", AdminPasswordHash: "x"}); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
	if _, err := NewAuthService(config.AuthConfig{JWTSecret: "s", JWTAccessTTL: "15m"}); err == nil {
		t.Fatal("expected error without ADMIN_PASSWORD_HASH")
	}
	if _, err := NewAuthService(config.AuthConfig{JWTSecret: "s", JWTAccessTTL: "bogus", AdminPasswordHash: "x"}); err == nil {
		t.Fatal("expected error for invalid TTL")
	}
}

func TestLoginAndParseAccessToken(t *testing.T) {
	svc := newTestAuthService(t)

	token, expiresIn, err := svc.Login("admin", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if expiresIn != 900 {
		t.Fatalf("expiresIn = %d, want 900", expiresIn)
	}

	user, err := svc.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if user.LoginID != "admin" {
		t.Fatalf("loginID = %q, want admin", user.LoginID)
	}
}

func TestLoginRejections(t *testing.T) {
	svc := newTestAuthService(t)

	if _, _, err := svc.Login("admin", "wrong"); err != ErrUnauthorized {
		t.Fatalf("wrong password: err = %v, want ErrUnauthorized", err)
	}
	if _, _, err := svc.Login("intruder", "correct-horse"); err != ErrUnauthorized {
		t.Fatalf("wrong login: err = %v, want ErrUnauthorized", err)
	}
	if _, _, err := svc.Login("", "correct-horse"); err != ErrInvalidInput {
		t.Fatalf("empty login: err = %v, want ErrInvalidInput", err)
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(t)

	if _, err := svc.ParseAccessToken("not-a-token"); err != ErrUnauthorized {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
