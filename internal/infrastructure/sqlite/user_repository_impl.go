package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT    PRIMARY KEY,
	username      TEXT    NOT NULL,
	email         TEXT    NOT NULL,
	password_hash TEXT    NOT NULL,
	full_name     TEXT    NOT NULL,
	phone_number  TEXT,
	status        TEXT    NOT NULL DEFAULT 'Active',
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL,
	CONSTRAINT users_username_key UNIQUE (username),
	CONSTRAINT users_email_key    UNIQUE (email)
);
CREATE INDEX IF NOT EXISTS idx_users_created_at ON users (created_at);
`

const userColumns = `id, username, email, password_hash, full_name, phone_number, status, created_at, updated_at`

// UserRepository stores users in an embedded SQLite database.
type UserRepository struct {
	db        *sql.DB
	writeLock sync.Mutex // the driver does not support concurrent writers
}

var _ repository.UserRepository = (*UserRepository)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*UserRepository, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	return &UserRepository{db: db}, nil
}

func (r *UserRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		rec       entity.UserRecord
		id        string
		phone     sql.NullString
		status    string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&id, &rec.Username, &rec.Email, &rec.PasswordHash, &rec.FullName,
		&phone, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse id %q: %w", id, err)
	}
	rec.ID = uid
	rec.PhoneNumber = phone.String
	rec.Status = entity.UserStatus(status)
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return entity.FromRecord(rec)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getOne(ctx, `id = ?`, id.String())
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `email = ?`, email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `username = ?`, username)
}

func (r *UserRepository) exists(ctx context.Context, where string, arg any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE `+where+`)`, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return ok, nil
}

func (r *UserRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `email = ?`, email)
}

func (r *UserRepository) ExistsUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `username = ?`, username)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	rec := u.Record()
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Username, rec.Email, rec.PasswordHash, rec.FullName,
		nullString(rec.PhoneNumber), string(rec.Status), rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapConstraintError(err))
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	rec := u.Record()
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET username = ?, email = ?, password_hash = ?, full_name = ?, phone_number = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, rec.Username, rec.Email, rec.PasswordHash, rec.FullName, nullString(rec.PhoneNumber),
		string(rec.Status), rec.UpdatedAt.UnixNano(), rec.ID.String())
	if err != nil {
		return fmt.Errorf("update user: %w", mapConstraintError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

// mapConstraintError turns unique violations into the matching domain error.
// SQLite names the offending column in the message ("users.email").
func mapConstraintError(err error) error {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return err
	}
	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		msg := liteErr.Error()
		switch {
		case strings.Contains(msg, "users.email"):
			return errors.Join(entity.ErrDuplicateEmail, err)
		case strings.Contains(msg, "users.username"):
			return errors.Join(entity.ErrDuplicateUsername, err)
		}
	}
	return err
}
