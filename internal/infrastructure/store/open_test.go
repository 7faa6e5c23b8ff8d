package store

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity-service/config"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		StoreDriver: config.StoreDriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "nested", "users.db"),
	}
	s, err := Open(context.Background(), cfg, quietLogger(), true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	if s.Pool != nil {
		t.Error("sqlite store has a pool")
	}
	u, err := entity.NewUser("u1", "u1@x.com", "digest", "User One", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), &config.Config{StoreDriver: "mongo"}, quietLogger(), false); err == nil {
		t.Fatal("expected error")
	}
}

func TestNilStoreClose(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
