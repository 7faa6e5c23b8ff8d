package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/repository"
)

const (
	uniqueViolation = "23505"
	stringTooLong   = "22001"

	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"
)

const userColumns = `id, username, email, password_hash, full_name, phone_number, status, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		rec    entity.UserRecord
		phone  *string
		status string
	)
	if err := row.Scan(&rec.ID, &rec.Username, &rec.Email, &rec.PasswordHash, &rec.FullName,
		&phone, &status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if phone != nil {
		rec.PhoneNumber = *phone
	}
	rec.Status = entity.UserStatus(status)
	return entity.FromRecord(rec)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `username = $1`, username)
}

func (r *UserRepository) exists(ctx context.Context, where string, arg any) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE `+where+`)`, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return ok, nil
}

func (r *UserRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `email = $1`, email)
}

func (r *UserRepository) ExistsUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `username = $1`, username)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	rec := u.Record()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.Username, rec.Email, rec.PasswordHash, rec.FullName,
		nullable(rec.PhoneNumber), string(rec.Status), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapConstraintError(err))
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	rec := u.Record()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, full_name = $4, phone_number = $5, status = $6, updated_at = $7
		WHERE id = $8
	`, rec.Username, rec.Email, rec.PasswordHash, rec.FullName, nullable(rec.PhoneNumber),
		string(rec.Status), rec.UpdatedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", mapConstraintError(err))
	}
	if res.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// mapConstraintError turns a unique violation on users into the matching
// domain error and an over-long value into ErrInvalidArgument, keeping the
// driver error in the chain.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if pgErr.Code == stringTooLong {
		return errors.Join(entity.ErrInvalidArgument, err)
	}
	if pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintEmail:
		return errors.Join(entity.ErrDuplicateEmail, err)
	case constraintUsername:
		return errors.Join(entity.ErrDuplicateUsername, err)
	}
	return err
}

// Ping reports whether the pool can reach the database.
func (r *UserRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.pool.Ping(ctx)
}

var _ repository.UserRepository = (*UserRepository)(nil)
