package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const userColumns = `id, email, name, role, password_hash, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// List returns a page of users, newest first, with the total count.
func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter) (users []domain.User, total int, err error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := max(filter.Offset, 0)

	query := `
		SELECT ` + userColumns + `, count(*) OVER() AS total_count
		FROM users
		ORDER BY created_at DESC, email
		LIMIT $1 OFFSET $2`

	ctx, end := database.TraceQuery(ctx, "ListUsers", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users = []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate user rows: %w", err)
	}

	if err := r.loadAddresses(ctx, users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// GetByID retrieves a user and their addresses.
func (r *UserRepository) GetByID(ctx context.Context, id string) (u *domain.User, err error) {
	if !validID(id) {
		return nil, apperrors.NotFound("User")
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetUser", query)
	defer func() { end(err) }()

	var user domain.User
	err = r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.Role, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("User")
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	users := []domain.User{user}
	if err := r.loadAddresses(ctx, users); err != nil {
		return nil, err
	}
	return &users[0], nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	const query = `
		INSERT INTO users (id, email, name, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateUser", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query, u.ID, u.Email, u.Name, u.Role, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("User", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// AddAddress inserts an address for an existing user.
func (r *UserRepository) AddAddress(ctx context.Context, a *domain.Address) (err error) {
	const query = `
		INSERT INTO addresses (id, user_id, full_name, line1, line2, city, postal_code, country, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	if !validID(a.UserID) {
		return apperrors.NotFound("User")
	}

	ctx, end := database.TraceQuery(ctx, "AddAddress", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		a.ID, a.UserID, a.FullName, a.Line1, a.Line2, a.City, a.PostalCode, a.Country, a.Phone, a.CreatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("User")
		}
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (r *UserRepository) loadAddresses(ctx context.Context, users []domain.User) (err error) {
	if len(users) == 0 {
		return nil
	}

	const query = `
		SELECT id, user_id, full_name, line1, line2, city, postal_code, country, phone, created_at
		FROM addresses
		WHERE user_id = ANY($1::uuid[])
		ORDER BY created_at`

	ids := make([]string, len(users))
	byID := make(map[string]*domain.User, len(users))
	for i := range users {
		ids[i] = users[i].ID
		byID[users[i].ID] = &users[i]
		users[i].Addresses = []domain.Address{}
	}

	ctx, end := database.TraceQuery(ctx, "LoadAddresses", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.FullName, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Country, &a.Phone, &a.CreatedAt); err != nil {
			return fmt.Errorf("scan address row: %w", err)
		}
		if u, ok := byID[a.UserID]; ok {
			u.Addresses = append(u.Addresses, a)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate address rows: %w", err)
	}
	return nil
}
