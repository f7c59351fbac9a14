// Package users implements identity management for the tutoring platform:
// registration, admin user search, and the role registry every authorization
// decision reads from.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"edusphere/internal/database"
)

var (
	// ErrUserNotFound is returned when no identity exists for an email
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole is returned when a role value is not student/tutor/admin
	ErrInvalidRole = errors.New("invalid role")
)

// Service defines the users service interface
type Service interface {
	// RegisterOrGet saves a new user or returns the existing record when the
	// email is already registered
	RegisterOrGet(ctx context.Context, email, name string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// RoleOf resolves the user's current role with a fresh read; results are
	// never cached so authorization always observes the latest persisted role
	RoleOf(ctx context.Context, email string) (Role, error)
	List(ctx context.Context, searchText string, page, pageSize int) (*PaginatedUsersResponse, error)
	UpdateRole(ctx context.Context, email string, role Role) (*User, error)
}

type service struct {
	db database.Service
}

// NewService creates a new users service
func NewService(db database.Service) Service {
	return &service{db: db}
}

// RegisterOrGet upserts a user by email. A repeat registration returns the
// stored record untouched, keeping the original role and timestamp.
func (s *service) RegisterOrGet(ctx context.Context, email, name string) (*User, error) {
	const q = `
		INSERT INTO users (email, name, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING email, name, role, created_at
	`

	user := &User{}
	err := s.db.QueryRow(ctx, q, email, name, RoleStudent, time.Now()).Scan(
		&user.Email, &user.Name, &user.Role, &user.CreatedAt,
	)
	if err == nil {
		log.Printf("Registered new user: %s", user.Email)
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	// Conflict: the email is already registered, return the existing record
	return s.GetByEmail(ctx, email)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*User, error) {
	const q = `SELECT email, name, role, created_at FROM users WHERE email = $1`

	user := &User{}
	err := s.db.QueryRow(ctx, q, email).Scan(
		&user.Email, &user.Name, &user.Role, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (s *service) RoleOf(ctx context.Context, email string) (Role, error) {
	const q = `SELECT role FROM users WHERE email = $1`

	var role Role
	err := s.db.QueryRow(ctx, q, email).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up role: %w", err)
	}

	return role, nil
}

// List returns a page of users, optionally filtered by a search over email
// and name (admin user management)
func (s *service) List(ctx context.Context, searchText string, page, pageSize int) (*PaginatedUsersResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	pattern := "%" + searchText + "%"

	var totalCount int64
	const countQuery = `SELECT COUNT(*) FROM users WHERE email ILIKE $1 OR name ILIKE $1`
	if err := s.db.QueryRow(ctx, countQuery, pattern).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	const q = `
		SELECT email, name, role, created_at
		FROM users
		WHERE email ILIKE $1 OR name ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.Query(ctx, q, pattern, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0, pageSize)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Email, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return &PaginatedUsersResponse{
		Users:      users,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// UpdateRole sets a user's role. The change takes effect on the user's very
// next request because guards re-read the role every time.
func (s *service) UpdateRole(ctx context.Context, email string, role Role) (*User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	const q = `
		UPDATE users
		SET role = $1
		WHERE email = $2
		RETURNING email, name, role, created_at
	`

	user := &User{}
	err := s.db.QueryRow(ctx, q, role, email).Scan(
		&user.Email, &user.Name, &user.Role, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	log.Printf("Updated role for %s to %s", user.Email, user.Role)

	return user, nil
}
