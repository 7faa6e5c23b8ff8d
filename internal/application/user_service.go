package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-identity-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/service"
)

// Service orchestrates the user aggregate and its store.
// It holds no locks; uniqueness is enforced by the store and the checks in
// Create only exist to report duplicates early.
type Service struct {
	Repo   repo.UserRepository
	Hasher service.PasswordHasher
	Events EventPublisher
}

func NewService(repo repo.UserRepository, hasher service.PasswordHasher, events EventPublisher) *Service {
	if events == nil {
		events = NopPublisher{}
	}
	return &Service{Repo: repo, Hasher: hasher, Events: events}
}

// UserView is the externally visible projection of a user.
type UserView struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toView(u *entity.User) *UserView {
	return &UserView{
		ID:          u.ID().String(),
		Username:    u.Username(),
		Email:       u.Email(),
		FullName:    u.FullName(),
		PhoneNumber: u.PhoneNumber(),
		Status:      u.Status().String(),
		CreatedAt:   u.CreatedAt(),
	}
}

type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
}

type UpdateUserInput struct {
	FullName    string
	PhoneNumber string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// parseID reports ok=false for ids that cannot name any user.
func parseID(id string) (uuid.UUID, bool) {
	uid, err := uuid.Parse(id)
	if err != nil || uid == uuid.Nil {
		return uuid.Nil, false
	}
	return uid, true
}

// GetByID returns nil, nil when no user has the id.
func (s *Service) GetByID(ctx context.Context, id string) (*UserView, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	u, err := s.Repo.GetByID(ctx, uid)
	if err != nil || u == nil {
		return nil, err
	}
	return toView(u), nil
}

// GetByEmail returns nil, nil when no user has the email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*UserView, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, err
	}
	return toView(u), nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*UserView, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil || u == nil {
		return nil, err
	}
	return toView(u), nil
}

// ListAll returns every user, oldest first.
func (s *Service) ListAll(ctx context.Context) ([]UserView, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, *toView(u))
	}
	return out, nil
}

// Create registers a new active user. Email duplicates are reported before
// username duplicates.
func (s *Service) Create(ctx context.Context, in CreateUserInput) (*UserView, error) {
	exists, err := s.Repo.ExistsEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, entity.ErrDuplicateEmail
	}
	exists, err = s.Repo.ExistsUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, entity.ErrDuplicateUsername
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := entity.NewUser(in.Username, in.Email, hash, in.FullName, in.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	view := toView(u)
	s.Events.Publish(ctx, newEvent(EventUserCreated, view))
	return view, nil
}

// load fetches a user for mutation from the store of record, mapping
// absence to ErrUserNotFound.
func (s *Service) load(ctx context.Context, id string) (*entity.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	u, err := repo.Primary(s.Repo).GetByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, entity.ErrUserNotFound
	}
	return u, nil
}

// Update replaces the profile fields of a user. Username, email and status
// cannot be changed here.
func (s *Service) Update(ctx context.Context, id string, in UpdateUserInput) (*UserView, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.UpdateProfile(in.FullName, in.PhoneNumber); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	view := toView(u)
	s.Events.Publish(ctx, newEvent(EventUserUpdated, view))
	return view, nil
}

// Delete removes the user permanently. It reports false when there was no
// such user.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.Repo.Delete(ctx, u.ID()); err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	s.Events.Publish(ctx, newEvent(EventUserDeleted, toView(u)))
	return true, nil
}

// Authenticate reports whether the credentials belong to an active user.
// Unknown email, wrong password and inactive status all give false.
func (s *Service) Authenticate(ctx context.Context, email, password string) (bool, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return false, nil
	}
	return s.Hasher.Verify(u.PasswordHash(), password) && u.IsActive(), nil
}

// ChangePassword replaces the password after checking the current one.
// A wrong current password gives false and leaves the user untouched.
func (s *Service) ChangePassword(ctx context.Context, id string, in ChangePasswordInput) (bool, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	if !s.Hasher.Verify(u.PasswordHash(), in.CurrentPassword) {
		return false, nil
	}
	hash, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if err := u.ChangePassword(hash); err != nil {
		return false, err
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}

	s.Events.Publish(ctx, newEvent(EventPasswordChanged, toView(u)))
	return true, nil
}

func (s *Service) Activate(ctx context.Context, id string) (*UserView, error) {
	return s.transition(ctx, id, (*entity.User).Activate)
}

func (s *Service) Deactivate(ctx context.Context, id string) (*UserView, error) {
	return s.transition(ctx, id, (*entity.User).Deactivate)
}

func (s *Service) Suspend(ctx context.Context, id string) (*UserView, error) {
	return s.transition(ctx, id, (*entity.User).Suspend)
}

func (s *Service) transition(ctx context.Context, id string, apply func(*entity.User)) (*UserView, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(u)
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	view := toView(u)
	s.Events.Publish(ctx, newEvent(EventStatusChanged, view))
	return view, nil
}
