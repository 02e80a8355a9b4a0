package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safe2go/helpdesk/internal/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, status, phone, company, created_at, approved_at, approved_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Name, strings.ToLower(u.Email), u.PasswordHash, u.Role, u.Status,
		nullableString(u.Phone), nullableString(u.Company), u.CreatedAt, u.ApprovedAt, nullableString(u.ApprovedBy),
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrEmailAlreadyRegistered
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, selectUser+` WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, selectUser+` WHERE email = $1`, strings.ToLower(email)))
}

// List returns users, optionally filtered by approval status.
func (r *UserRepository) List(ctx context.Context, status domain.UserStatus) ([]*domain.User, error) {
	query := selectUser
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListAdmins returns approved administrators, used for notification fan-out.
func (r *UserRepository) ListAdmins(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx,
		selectUser+` WHERE role = $1 AND status = $2 ORDER BY created_at ASC`,
		domain.UserRoleAdmin, domain.UserStatusApproved,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetStatus records an approval decision.
func (r *UserRepository) SetStatus(ctx context.Context, id string, status domain.UserStatus, approvedBy string) error {
	var approvedAt *time.Time
	if status == domain.UserStatusApproved {
		now := time.Now().UTC()
		approvedAt = &now
	}

	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE users SET status = $1, approved_at = $2, approved_by = $3 WHERE id = $4`,
		status, approvedAt, nullableString(approvedBy), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $1, phone = $2, company = $3, role = $4 WHERE id = $5`,
		u.Name, nullableString(u.Phone), nullableString(u.Company), u.Role, u.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

const selectUser = `SELECT id, name, email, password_hash, role, status, phone, company, created_at, approved_at, approved_by FROM users`

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var phone, company, approvedBy *string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status,
		&phone, &company, &u.CreatedAt, &u.ApprovedAt, &approvedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if phone != nil {
		u.Phone = *phone
	}
	if company != nil {
		u.Company = *company
	}
	if approvedBy != nil {
		u.ApprovedBy = *approvedBy
	}
	return &u, nil
}
