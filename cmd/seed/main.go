package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity-service/config"
	"github.com/oksasatya/go-ddd-identity-service/internal/application"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity-service/internal/infrastructure/store"
	"github.com/oksasatya/go-ddd-identity-service/pkg/helpers"
)

func main() {
	username := flag.String("username", "demoUser", "username of the seeded user")
	email := flag.String("email", "demo@example.com", "email of the seeded user")
	password := flag.String("password", "password123", "password of the seeded user")
	fullName := flag.String("name", "Demo User", "full name of the seeded user")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	st, err := store.Open(ctx, cfg, logger, true)
	if err != nil {
		logger.WithError(err).Fatal("failed to open user store")
	}
	defer func() { _ = st.Close() }()

	hasher, err := helpers.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		logger.WithError(err).Fatal("invalid password hasher")
	}
	svc := application.NewService(st.Repo, hasher, nil)

	u, err := svc.Create(ctx, application.CreateUserInput{
		Username: *username,
		Email:    *email,
		Password: *password,
		FullName: *fullName,
	})
	switch {
	case errors.Is(err, entity.ErrDuplicateEmail), errors.Is(err, entity.ErrDuplicateUsername):
		logger.WithField("email", *email).Info("seed user already present")
		return
	case err != nil:
		logger.WithError(err).Fatal("failed to seed user")
	}
	logger.WithFields(logrus.Fields{"id": u.ID, "username": u.Username, "email": u.Email}).Info("seeded user")
}
