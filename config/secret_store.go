package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// secretRecord is the on-disk shape of the JWT secret store.
type secretRecord struct {
	SecretKey   string    `json:"secret_key"`
	Algorithm   string    `json:"algorithm"`
	ExpireHours int       `json:"expire_hours"`
	LastRotated time.Time `json:"last_rotated"`
}

// LoadOrRotateSecret returns the signing secret from the store file,
// initializing the file if absent and regenerating the secret once it is
// older than maxAge. Corrupt or incomplete files are rebuilt rather than
// surfaced as errors: losing the secret only invalidates outstanding tokens.
func LoadOrRotateSecret(path string, maxAge time.Duration) (string, error) {
	rec, err := readSecretFile(path)
	if err != nil {
		customLog.Warnf("Secret store unreadable (%v), rebuilding %s", err, path)
		rec = nil
	}

	now := time.Now().UTC()
	if rec == nil || rec.SecretKey == "" || now.Sub(rec.LastRotated) >= maxAge {
		key, err := newSecretKey()
		if err != nil {
			return "", err
		}
		rec = &secretRecord{
			SecretKey:   key,
			Algorithm:   "HS256",
			ExpireHours: int(maxAge.Hours()),
			LastRotated: now,
		}
		if err := writeSecretFile(path, rec); err != nil {
			return "", err
		}
		customLog.Printf("Rotated JWT signing secret in %s", path)
	}

	return rec.SecretKey, nil
}

func readSecretFile(path string) (*secretRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var rec secretRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func writeSecretFile(path string, rec *secretRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create secret store directory: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode secret store: %w", err)
	}
	// 0600: the signing key must not be group/world readable.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write secret store: %w", err)
	}
	return nil
}

func newSecretKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate signing secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
