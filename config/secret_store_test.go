package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOrRotateSecretInitializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "secret_store.json")

	secret, err := LoadOrRotateSecret(path, 6*time.Hour)
	if err != nil {
		t.Fatalf("LoadOrRotateSecret: %v", err)
	}
	if secret == "" {
		t.Fatal("expected a generated secret")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("store file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("store file permissions = %o; want 0600", perm)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rec secretRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("store file is not valid JSON: %v", err)
	}
	if rec.Algorithm != "HS256" {
		t.Errorf("algorithm = %q; want HS256", rec.Algorithm)
	}
	if rec.SecretKey != secret {
		t.Error("persisted secret differs from the returned one")
	}
}

func TestLoadOrRotateSecretIsStableWithinMaxAge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret_store.json")

	first, err := LoadOrRotateSecret(path, 6*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	second, err := LoadOrRotateSecret(path, 6*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("secret rotated before maxAge elapsed")
	}
}

func TestLoadOrRotateSecretRotatesExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret_store.json")

	stale := secretRecord{
		SecretKey:   "stale-key",
		Algorithm:   "HS256",
		ExpireHours: 6,
		LastRotated: time.Now().UTC().Add(-7 * time.Hour),
	}
	data, err := json.Marshal(stale)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	secret, err := LoadOrRotateSecret(path, 6*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if secret == "stale-key" {
		t.Error("expired secret was not rotated")
	}
}

func TestLoadOrRotateSecretRebuildsCorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret_store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	secret, err := LoadOrRotateSecret(path, 6*time.Hour)
	if err != nil {
		t.Fatalf("corrupt store must be rebuilt, got error: %v", err)
	}
	if secret == "" {
		t.Fatal("expected a regenerated secret")
	}
}
