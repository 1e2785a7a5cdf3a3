package service

import (
	"context"
	"fmt"
	"time"

	"priceboard/internal/domain"
	"priceboard/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates the admin operator and issues access tokens.
// Session management stays deliberately thin: one admin role, short-lived
// tokens, no refresh flow.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, admin *domain.Admin, err error)
}

type authService struct {
	adminRepo    repository.AdminRepository
	jwtSecret    string
	accessExpiry time.Duration
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(adminRepo repository.AdminRepository, jwtSecret string, accessExpiryMinutes int) AuthService {
	return &authService{
		adminRepo:    adminRepo,
		jwtSecret:    jwtSecret,
		accessExpiry: time.Duration(accessExpiryMinutes) * time.Minute,
	}
}

// Login verifies the password against the stored bcrypt hash and returns a
// signed access token carrying the admin role.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Admin, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrAdminNotFound {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id": admin.ID.String(),
		"role":    "admin",
		"exp":     jwt.NewNumericDate(time.Now().Add(s.accessExpiry)),
		"iat":     jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, admin, nil
}
