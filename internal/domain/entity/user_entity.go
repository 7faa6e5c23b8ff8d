package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserStatus is the account state of a user.
type UserStatus string

const (
	StatusActive    UserStatus = "Active"
	StatusInactive  UserStatus = "Inactive"
	StatusSuspended UserStatus = "Suspended"
)

// ParseUserStatus returns the status named by s.
func ParseUserStatus(s string) (UserStatus, error) {
	switch st := UserStatus(s); st {
	case StatusActive, StatusInactive, StatusSuspended:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, s)
}

func (s UserStatus) String() string { return string(s) }

// User is the aggregate root for the identity domain.
// Identity fields are fixed at construction; every other change goes through
// a mutation method which also refreshes UpdatedAt.
type User struct {
	id           uuid.UUID
	username     string
	email        string
	passwordHash string
	fullName     string
	phoneNumber  string
	status       UserStatus
	createdAt    time.Time
	updatedAt    time.Time
}

// UserRecord is the flat persisted form of a User.
type UserRecord struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	PhoneNumber  string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// now is truncated to microseconds so timestamps survive a round trip
// through any of the stores unchanged.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func required(field, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	return nil
}

// NewUser builds an active user with a fresh id.
// passwordHash must already be the hasher's output.
func NewUser(username, email, passwordHash, fullName, phoneNumber string) (*User, error) {
	for _, f := range []struct{ name, value string }{
		{"username", username},
		{"email", email},
		{"password_hash", passwordHash},
		{"full_name", fullName},
	} {
		if err := required(f.name, f.value); err != nil {
			return nil, err
		}
	}
	created := now()
	return &User{
		id:           uuid.New(),
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		fullName:     fullName,
		phoneNumber:  phoneNumber,
		status:       StatusActive,
		createdAt:    created,
		updatedAt:    created,
	}, nil
}

// FromRecord rehydrates a User loaded from a store.
func FromRecord(r UserRecord) (*User, error) {
	if r.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	for _, f := range []struct{ name, value string }{
		{"username", r.Username},
		{"email", r.Email},
		{"password_hash", r.PasswordHash},
		{"full_name", r.FullName},
	} {
		if err := required(f.name, f.value); err != nil {
			return nil, err
		}
	}
	status, err := ParseUserStatus(string(r.Status))
	if err != nil {
		return nil, err
	}
	return &User{
		id:           r.ID,
		username:     r.Username,
		email:        r.Email,
		passwordHash: r.PasswordHash,
		fullName:     r.FullName,
		phoneNumber:  r.PhoneNumber,
		status:       status,
		createdAt:    r.CreatedAt.UTC(),
		updatedAt:    r.UpdatedAt.UTC(),
	}, nil
}

// Record returns the persisted form of u.
func (u *User) Record() UserRecord {
	return UserRecord{
		ID:           u.id,
		Username:     u.username,
		Email:        u.email,
		PasswordHash: u.passwordHash,
		FullName:     u.fullName,
		PhoneNumber:  u.phoneNumber,
		Status:       u.status,
		CreatedAt:    u.createdAt,
		UpdatedAt:    u.updatedAt,
	}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) FullName() string     { return u.fullName }
func (u *User) PhoneNumber() string  { return u.phoneNumber }
func (u *User) Status() UserStatus   { return u.status }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
func (u *User) IsActive() bool       { return u.status == StatusActive }

// touch refreshes updatedAt; it never moves backwards.
func (u *User) touch() {
	t := now()
	if t.Before(u.updatedAt) {
		t = u.updatedAt
	}
	u.updatedAt = t
}

// UpdateProfile overwrites the display fields.
func (u *User) UpdateProfile(fullName, phoneNumber string) error {
	if err := required("full_name", fullName); err != nil {
		return err
	}
	u.fullName = fullName
	u.phoneNumber = phoneNumber
	u.touch()
	return nil
}

// ChangePassword stores a new digest. Verifying the old password is the
// caller's job.
func (u *User) ChangePassword(newHash string) error {
	if err := required("password_hash", newHash); err != nil {
		return err
	}
	u.passwordHash = newHash
	u.touch()
	return nil
}

func (u *User) Activate()   { u.setStatus(StatusActive) }
func (u *User) Deactivate() { u.setStatus(StatusInactive) }
func (u *User) Suspend()    { u.setStatus(StatusSuspended) }

func (u *User) setStatus(s UserStatus) {
	u.status = s
	u.touch()
}
