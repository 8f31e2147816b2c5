package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentalcare/clinic/internal/platform/auth"
)

type Service struct {
	users Repository
	jwt   auth.JWTConfig
}

func NewService(users Repository, jwt auth.JWTConfig) *Service {
	return &Service{users: users, jwt: jwt}
}

// Register creates an account with a bcrypt-hashed password. Emails are
// stored lower-cased and must be unique.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if req == nil {
		return nil, fmt.Errorf("register request is required")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s is already registered", email)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		PatientID:    req.PatientID,
		DentistID:    req.DentistID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials and issues a signed token carrying the user's
// role. The same error covers a missing account and a wrong password.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, fmt.Errorf("invalid credentials")
	}

	token, err := auth.IssueToken(s.jwt, u.ID.String(), []string{u.Role})
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.jwt.TokenTTL),
		User:      u,
	}, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}
