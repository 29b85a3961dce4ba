package bookden

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func generatePasswordDigest(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), 11)
	if err != nil {
		return "", fmt.Errorf("error bcrypt.GenerateFromPassword: %w", err)
	}
	return string(digest), nil
}

func comparePasswordDigest(password, digest string) (bool, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("error bcrypt.CompareHashAndPassword: %w", err)
	}
	return true, nil
}

func getUserByUsername(ctx context.Context, db connOrTx, username string) (*UserRow, error) {
	var row UserRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM users WHERE `username` = ?", username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get user by username=%s: %w", username, err)
	}
	return &row, nil
}

func userExists(ctx context.Context, db connOrTx, username string) (bool, error) {
	user, err := getUserByUsername(ctx, db, username)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

func createUser(ctx context.Context, db connOrTx, username, email, password string, isAdmin bool, createdAt time.Time) error {
	existing, err := getUserByUsername(ctx, db, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserExists
	}

	digest, err := generatePasswordDigest(password)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(
		ctx,
		"INSERT INTO users (`username`, `email`, `password_digest`, `is_admin`, `created_at`) VALUES (?, ?, ?, ?, ?)",
		username, email, digest, isAdmin, createdAt,
	); err != nil {
		if isDuplicateEntry(err) {
			return ErrUserExists
		}
		return fmt.Errorf("error Insert user by username=%s: %w", username, err)
	}
	return nil
}

// authenticateUser checks the password digest, never the plaintext. Fails with
// ErrUserNotFound or ErrWrongPassword.
func authenticateUser(ctx context.Context, db connOrTx, username, password string) (*UserRow, error) {
	user, err := getUserByUsername(ctx, db, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	matched, err := comparePasswordDigest(password, user.PasswordDigest)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrWrongPassword
	}
	return user, nil
}

// deleteUser removes the user and everything they own: entries of their
// folders, the folders, their comments, their ratings, then the user row.
// Callers run it inside a transaction.
func deleteUser(ctx context.Context, db connOrTx, username string) error {
	user, err := getUserByUsername(ctx, db, username)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	var folders []FolderRow
	if err := db.SelectContext(
		ctx,
		&folders,
		"SELECT * FROM folders WHERE `owner_username` = ?",
		username,
	); err != nil {
		return fmt.Errorf("error Select folders by owner_username=%s: %w", username, err)
	}
	for _, folder := range folders {
		if _, err := db.ExecContext(
			ctx,
			"DELETE FROM folders_to_books WHERE `folder_id` = ?",
			folder.ID,
		); err != nil {
			return fmt.Errorf("error Delete folders_to_books by folder_id=%s: %w", folder.ID, err)
		}
	}
	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM folders WHERE `owner_username` = ?",
		username,
	); err != nil {
		return fmt.Errorf("error Delete folders by owner_username=%s: %w", username, err)
	}
	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM comments WHERE `username` = ?",
		username,
	); err != nil {
		return fmt.Errorf("error Delete comments by username=%s: %w", username, err)
	}
	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM ratings WHERE `username` = ?",
		username,
	); err != nil {
		return fmt.Errorf("error Delete ratings by username=%s: %w", username, err)
	}
	if _, err := db.ExecContext(
		ctx,
		"DELETE FROM users WHERE `username` = ?",
		username,
	); err != nil {
		return fmt.Errorf("error Delete user by username=%s: %w", username, err)
	}
	return nil
}
