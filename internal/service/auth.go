package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingFields      = errors.New("name, email and password are required")
)

// AuthService handles registration and login. Sessions are stateless: the
// issued token is the only credential, nothing is stored server-side.
type AuthService struct {
	store  *store.Store
	tokens *auth.TokenService
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store *store.Store, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates a new user account
func (as *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := as.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	as.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a signed token. A missing user and a
// wrong password report the same failure.
func (as *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := as.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			util.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		util.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, "", ErrInvalidCredentials
	}

	token, err := as.tokens.Issue(auth.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   "user",
	})
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	util.LoginsTotal.WithLabelValues("success").Inc()
	return user, token, nil
}
