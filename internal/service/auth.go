package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tripfolio/tripfolio-api/internal/apperr"
	"github.com/tripfolio/tripfolio-api/internal/auth"
	"github.com/tripfolio/tripfolio-api/internal/model"
	"github.com/tripfolio/tripfolio-api/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for unknown users and wrong passwords
var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLength = 8

// AuthService handles accounts and sessions. Handlers resolve the owner
// identity here; everything below takes it as a plain parameter.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      *auth.TokenService
}

// NewAuthService creates the auth service
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
	}
}

// AuthInterface defines the auth service interface for testing
type AuthInterface interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.TokenResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error)
	Logout(ctx context.Context, sessionID string) error
	ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error)
}

// Register creates an account and logs it in
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.TokenResponse, error) {
	if req.Username == "" {
		return nil, apperr.InvalidArgument("username is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.InvalidArgument("password must be at least %d characters", minPasswordLength)
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, apperr.InvalidArgument("username %q is taken", req.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.userRepo.CreateUser(ctx, req.Username, string(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(ctx, userID, req.Username)
}

// Login exchanges credentials for a token
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(ctx, user.ID, user.Username)
}

// Logout revokes the session behind a token; further requests with that
// token fail even though the signature is still valid
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ValidateToken checks the signature and that the session row still exists
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, errors.New("session revoked")
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, errors.New("session expired")
	}
	return claims, nil
}

func (s *AuthService) issueToken(ctx context.Context, userID int64, username string) (*model.TokenResponse, error) {
	sessionID := uuid.NewString()
	token, expiresAt, err := s.tokens.GenerateToken(userID, username, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &model.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}
