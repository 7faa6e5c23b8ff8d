// Package cache adds a Redis read-through cache in front of a user store.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-identity-service/pkg/helpers"
)

// DefaultKeyPrefix namespaces cached records inside a shared Redis.
const DefaultKeyPrefix = "identity:user:"

// CachedUserRepository caches GetByID results for read paths. Writes go to
// the wrapped store first and then refresh the cached entry. Fills only
// land on an empty key, so a read that raced a write cannot replace what
// the write left behind. Uniqueness checks and loads for mutation are never
// served from the cache (see repository.Primary).
//
// Entries carry the password digest; keep them in a Redis the API alone
// can reach and give them a short TTL.
type CachedUserRepository struct {
	repository.UserRepository
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger *logrus.Logger
}

var (
	_ repository.UserRepository = (*CachedUserRepository)(nil)
	_ repository.Sourced        = (*CachedUserRepository)(nil)
)

func NewCachedUserRepository(next repository.UserRepository, rdb *redis.Client, ttl time.Duration, prefix string, logger *logrus.Logger) *CachedUserRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &CachedUserRepository{UserRepository: next, rdb: rdb, ttl: ttl, prefix: prefix, logger: logger}
}

// Source returns the wrapped store.
func (r *CachedUserRepository) Source() repository.UserRepository {
	return r.UserRepository
}

func (r *CachedUserRepository) key(id uuid.UUID) string {
	return r.prefix + id.String()
}

func (r *CachedUserRepository) warn(err error, key, msg string) {
	if r.logger != nil {
		r.logger.WithError(err).WithField("key", key).Warn(msg)
	}
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	key := r.key(id)
	var rec cachedUser
	found, err := helpers.RedisGetJSON(ctx, r.rdb, key, &rec)
	if err != nil {
		r.warn(err, key, "redis get failed")
	}
	if found && !rec.Deleted {
		if u, err := entity.FromRecord(rec.toRecord()); err == nil {
			return u, nil
		}
		if err := helpers.RedisDel(ctx, r.rdb, key); err != nil {
			r.warn(err, key, "redis del failed")
		}
	}

	u, err := r.UserRepository.GetByID(ctx, id)
	if err != nil || u == nil || found {
		// a tombstone stays until it expires
		return u, err
	}
	if _, err := helpers.RedisSetJSONNX(ctx, r.rdb, key, fromRecord(u.Record()), r.ttl); err != nil {
		r.warn(err, key, "redis set failed")
	}
	return u, nil
}

func (r *CachedUserRepository) Update(ctx context.Context, u *entity.User) error {
	if err := r.UserRepository.Update(ctx, u); err != nil {
		return err
	}
	r.put(ctx, u.ID(), fromRecord(u.Record()))
	return nil
}

func (r *CachedUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.put(ctx, id, cachedUser{ID: id, Deleted: true})
	return nil
}

// put overwrites the entry after a write. If Redis refuses, the entry is
// dropped instead.
func (r *CachedUserRepository) put(ctx context.Context, id uuid.UUID, rec cachedUser) {
	key := r.key(id)
	err := helpers.RedisSetJSON(ctx, r.rdb, key, rec, r.ttl)
	if err == nil {
		return
	}
	r.warn(err, key, "redis set failed")
	if err := helpers.RedisDel(ctx, r.rdb, key); err != nil {
		r.warn(err, key, "redis del failed")
	}
}

// cachedUser is the JSON form kept in Redis. Deleted marks a tombstone.
type cachedUser struct {
	ID           uuid.UUID `json:"id"`
	Deleted      bool      `json:"deleted,omitempty"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FullName     string    `json:"full_name"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func fromRecord(r entity.UserRecord) cachedUser {
	return cachedUser{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FullName:     r.FullName,
		PhoneNumber:  r.PhoneNumber,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (c cachedUser) toRecord() entity.UserRecord {
	return entity.UserRecord{
		ID:           c.ID,
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FullName:     c.FullName,
		PhoneNumber:  c.PhoneNumber,
		Status:       entity.UserStatus(c.Status),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
