package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
)

// UserRepository defines the persistence contract for users.
//
// Lookups return (nil, nil) when no user matches. Create must reject a
// duplicate email or username with entity.ErrDuplicateEmail or
// entity.ErrDuplicateUsername, enforced by the store itself so that
// concurrent creates cannot both succeed. Update and Delete return
// entity.ErrUserNotFound when the id does not exist.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns every user ordered by creation time, oldest first.
	List(ctx context.Context) ([]*entity.User, error)
}

// Sourced is implemented by read-through decorators. Source returns the
// store behind the decorator.
type Sourced interface {
	Source() UserRepository
}

// Primary unwraps r down to the store of record. Reads that feed a
// mutation go through it so a stale cached copy is never written back.
func Primary(r UserRepository) UserRepository {
	for {
		s, ok := r.(Sourced)
		if !ok {
			return r
		}
		r = s.Source()
	}
}
