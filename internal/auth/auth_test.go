package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/smartquery/text2sql-backend/internal/domain"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPasswordHash("correct horse battery", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong password", hash) {
		t.Error("wrong password accepted")
	}
	if CheckPasswordHash("correct horse battery", "not-a-bcrypt-hash") {
		t.Error("garbage hash accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	user := &domain.User{
		UserId:     "user-123",
		Username:   "alice",
		Permission: domain.PermissionRestricted,
	}

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	identity, err := ValidateJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if identity.UserID != "user-123" || identity.Username != "alice" {
		t.Errorf("identity = %+v; want user-123/alice", identity)
	}
	if identity.Permission != domain.PermissionRestricted {
		t.Errorf("permission = %d; want %d (level survives the round trip)", identity.Permission, domain.PermissionRestricted)
	}
}

func TestJWTUnrecognizedLevelPassesThrough(t *testing.T) {
	// Token validation does not police the level; the query pipeline fails
	// closed on it later.
	user := &domain.User{UserId: "user-9", Username: "eve", Permission: domain.PermissionLevel(9)}
	token, err := GenerateJWT(user, "test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	identity, err := ValidateJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if identity.Permission != domain.PermissionLevel(9) {
		t.Errorf("permission = %d; want 9 passed through verbatim", identity.Permission)
	}
	if identity.Permission.Recognized() {
		t.Error("level 9 must not be a recognized permission")
	}
}

func TestValidateJWTFailures(t *testing.T) {
	user := &domain.User{UserId: "user-123", Username: "alice", Permission: domain.PermissionStandard}

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := GenerateJWT(user, "secret-a", time.Hour)
		if _, err := ValidateJWT(token, "secret-b"); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("err = %v; want ErrTokenInvalid", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, _ := GenerateJWT(user, "test-secret", -time.Minute)
		if _, err := ValidateJWT(token, "test-secret"); !errors.Is(err, ErrTokenExpired) {
			t.Errorf("err = %v; want ErrTokenExpired", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := ValidateJWT("not.a.token", "test-secret"); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("err = %v; want ErrTokenMalformed", err)
		}
	})
}
