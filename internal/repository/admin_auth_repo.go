package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Admin struct {
	ID           string
	Email        string
	PasswordHash string
}

type AdminAuthRepository interface {
	// GetByEmail returns nil, nil when no admin has that email.
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	CreateNewUser(ctx context.Context, email, password string) error
}

type adminAuthRepository struct {
	db *sql.DB
}

func NewAdminAuthRepository(conn *sql.DB) AdminAuthRepository {
	return &adminAuthRepository{db: conn}
}

func (r *adminAuthRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	var admin Admin
	err := r.db.QueryRowContext(ctx, "SELECT id, email, password_hash FROM admins WHERE email = $1", normalizeEmail(email)).
		Scan(&admin.ID, &admin.Email, &admin.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying admin: %w", err)
	}
	return &admin, nil
}

func (r *adminAuthRepository) CreateNewUser(ctx context.Context, email, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, "INSERT INTO admins (email, password_hash) VALUES ($1, $2)", normalizeEmail(email), string(hashedPassword))
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("admin %s already exists", email)
		}
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
