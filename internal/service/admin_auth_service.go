package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "simbooking/internal/errors"
	"simbooking/internal/repository"
	"simbooking/internal/utils"
)

// TokenTTL is the lifetime of an admin session token.
const TokenTTL = 24 * time.Hour

const minPasswordLength = 8

type AdminClaims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

type AdminAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (*AdminClaims, error)
	CreateAdmin(ctx context.Context, email, password string) error
}

type adminAuthService struct {
	repo   repository.AdminAuthRepository
	secret []byte
	log    *zap.Logger
	now    func() time.Time
}

func NewAdminAuthService(repo repository.AdminAuthRepository, jwtSecret string, log *zap.Logger) AdminAuthService {
	return &adminAuthService{repo: repo, secret: []byte(jwtSecret), log: log, now: time.Now}
}

func (s *adminAuthService) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.log.Error("admin lookup failed", zap.Error(err))
		return "", apperrors.ErrDatabase()
	}
	if admin == nil || !checkPasswordHash(password, admin.PasswordHash) {
		s.log.Warn("admin login rejected", zap.String("email", email))
		return "", apperrors.ErrUnauthorized("Credenziali non valide")
	}

	now := s.now()
	claims := AdminClaims{
		AdminID: admin.ID,
		Email:   admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	s.log.Info("admin logged in", zap.String("admin_id", admin.ID))
	return signed, nil
}

func (s *adminAuthService) ParseToken(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperrors.ErrUnauthorized("Non autorizzato")
	}
	return claims, nil
}

func (s *adminAuthService) CreateAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return errors.New("email and password cannot be empty")
	}
	if !utils.IsValidEmail(email) {
		return fmt.Errorf("invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return s.repo.CreateNewUser(ctx, email, password)
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
