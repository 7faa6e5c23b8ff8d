package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity-service/internal/infrastructure/sqlite"
)

func openRepo(t *testing.T) *sqlite.UserRepository {
	t.Helper()
	r, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func mustUser(t *testing.T, username, email string) *entity.User {
	t.Helper()
	u, err := entity.NewUser(username, email, "digest", "Full "+username, "")
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	return u
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t)
	u := mustUser(t, "u1", "u1@x.com")

	if err := r.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	lookups := map[string]func() (*entity.User, error){
		"id":       func() (*entity.User, error) { return r.GetByID(ctx, u.ID()) },
		"email":    func() (*entity.User, error) { return r.GetByEmail(ctx, "u1@x.com") },
		"username": func() (*entity.User, error) { return r.GetByUsername(ctx, "u1") },
	}
	for name, get := range lookups {
		got, err := get()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got == nil || got.Record() != u.Record() {
			t.Fatalf("%s: got %+v, want %+v", name, got, u.Record())
		}
	}

	missing, err := r.GetByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("missing id: %v, %v", missing, err)
	}
	missing, err = r.GetByEmail(ctx, "U1@x.com")
	if err != nil || missing != nil {
		t.Fatalf("emails are compared as stored: %v, %v", missing, err)
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t)
	if err := r.Create(ctx, mustUser(t, "u1", "u1@x.com")); err != nil {
		t.Fatal(err)
	}

	if ok, err := r.ExistsEmail(ctx, "u1@x.com"); err != nil || !ok {
		t.Errorf("ExistsEmail = %v, %v", ok, err)
	}
	if ok, err := r.ExistsEmail(ctx, "u2@x.com"); err != nil || ok {
		t.Errorf("ExistsEmail(unknown) = %v, %v", ok, err)
	}
	if ok, err := r.ExistsUsername(ctx, "u1"); err != nil || !ok {
		t.Errorf("ExistsUsername = %v, %v", ok, err)
	}
	if ok, err := r.ExistsUsername(ctx, "u2"); err != nil || ok {
		t.Errorf("ExistsUsername(unknown) = %v, %v", ok, err)
	}
}

func TestCreateUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t)
	if err := r.Create(ctx, mustUser(t, "u1", "u1@x.com")); err != nil {
		t.Fatal(err)
	}

	err := r.Create(ctx, mustUser(t, "u2", "u1@x.com"))
	if !errors.Is(err, entity.ErrDuplicateEmail) {
		t.Errorf("duplicate email: err = %v", err)
	}
	err = r.Create(ctx, mustUser(t, "u1", "u2@x.com"))
	if !errors.Is(err, entity.ErrDuplicateUsername) {
		t.Errorf("duplicate username: err = %v", err)
	}
}

func TestConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t)

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		conflict int
	)
	users := make([]*entity.User, n)
	for i := range users {
		users[i] = mustUser(t, uuid.NewString(), "same@x.com")
	}
	for _, u := range users {
		wg.Add(1)
		go func(u *entity.User) {
			defer wg.Done()
			err := r.Create(ctx, u)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, entity.ErrDuplicateEmail):
				conflict++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(u)
	}
	wg.Wait()

	if success != 1 || conflict != n-1 {
		t.Errorf("success=%d conflict=%d", success, conflict)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t)
	u := mustUser(t, "u1", "u1@x.com")
	if err := r.Create(ctx, u); err != nil {
		t.Fatal(err)
	}

	if err := u.UpdateProfile("Changed", "555"); err != nil {
		t.Fatal(err)
	}
	u.Suspend()
	if err := r.Update(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := r.GetByID(ctx, u.ID())
	if err != nil {
		t.Fatal(err)
	}
	if got.Record() != u.Record() {
		t.Errorf("got %+v, want %+v", got.Record(), u.Record())
	}

	ghost := mustUser(t, "ghost", "ghost@x.com")
	if err := r.Update(ctx, ghost); !errors.Is(err, entity.ErrUserNotFound) {
		t.Errorf("update missing: err = %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t)
	u := mustUser(t, "u1", "u1@x.com")
	if err := r.Create(ctx, u); err != nil {
		t.Fatal(err)
	}

	if err := r.Delete(ctx, u.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := r.GetByID(ctx, u.ID()); got != nil {
		t.Error("user still present after delete")
	}
	if err := r.Delete(ctx, u.ID()); !errors.Is(err, entity.ErrUserNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
	// hard delete frees the email and username
	if err := r.Create(ctx, mustUser(t, "u1", "u1@x.com")); err != nil {
		t.Errorf("recreate after delete: %v", err)
	}
}

func TestListOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	r := openRepo(t)

	var want []uuid.UUID
	for _, name := range []string{"c", "a", "b"} {
		u := mustUser(t, name, name+"@x.com")
		if err := r.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
		want = append(want, u.ID())
	}

	users, err := r.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != len(want) {
		t.Fatalf("len = %d, want %d", len(users), len(want))
	}
	for i := 1; i < len(users); i++ {
		if users[i].CreatedAt().Before(users[i-1].CreatedAt()) {
			t.Errorf("users not ordered by created_at at %d", i)
		}
	}
}
