package store

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/models"
)

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user. A duplicate email reports ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.GetContext(ctx, user,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		user.Name, user.Email, user.PasswordHash)
	if IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}
