// internal/storage/metadata_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/smartquery/text2sql-backend/internal/domain"
)

// Specific errors for metadata operations
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// --- User Operations ---

// CreateUser inserts a new user into the metadata database.
func CreateUser(ctx context.Context, db *sql.DB, userID, username, email, passwordHash string, permission domain.PermissionLevel) (string, error) {
	sqlStatement := `INSERT INTO users (user_id, username, email, password_hash, permission) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, sqlStatement, userID, username, email, passwordHash, int(permission))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			if strings.Contains(sqliteErr.Error(), "users.email") {
				return "", ErrEmailExists
			}
		}
		customLog.Warnf("Storage: Failed to insert user %s: %v", email, err)
		return "", fmt.Errorf("database error during user creation: %w", err)
	}
	return userID, nil
}

// FindUserByEmail retrieves a user by their email address.
func FindUserByEmail(ctx context.Context, db *sql.DB, email string) (*domain.User, error) {
	sqlStatement := `SELECT user_id, username, email, password_hash, permission, created_at FROM users WHERE email = ? LIMIT 1`
	row := db.QueryRowContext(ctx, sqlStatement, email)
	var user domain.User
	var permission int
	err := row.Scan(&user.UserId, &user.Username, &user.Email, &user.PasswordHash, &permission, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		customLog.Warnf("Storage: Failed to find user by email %s: %v", email, err)
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	user.Permission = domain.PermissionLevel(permission)
	return &user, nil
}

// FindUserByUserId retrieves a user by their id.
func FindUserByUserId(ctx context.Context, db *sql.DB, userID string) (*domain.User, error) {
	sqlStatement := `SELECT user_id, username, email, password_hash, permission, created_at FROM users WHERE user_id = ? LIMIT 1`
	row := db.QueryRowContext(ctx, sqlStatement, userID)
	var user domain.User
	var permission int
	err := row.Scan(&user.UserId, &user.Username, &user.Email, &user.PasswordHash, &permission, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		customLog.Warnf("Storage: Failed to find user by id %s: %v", userID, err)
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	user.Permission = domain.PermissionLevel(permission)
	return &user, nil
}
