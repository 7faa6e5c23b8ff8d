package main

import (
	"context"
	"flag"
	"io"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity-service/config"
	"github.com/oksasatya/go-ddd-identity-service/internal/application"
	"github.com/oksasatya/go-ddd-identity-service/internal/infrastructure/store"
	"github.com/oksasatya/go-ddd-identity-service/pkg/helpers"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "overall export timeout")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-export", cfg.Env, cfg.LogLevel)
	if cfg.GCSBucket == "" {
		logger.Fatal("GCS_BUCKET not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	st, err := store.Open(ctx, cfg, logger, false)
	if err != nil {
		logger.WithError(err).Fatal("failed to open user store")
	}
	defer func() { _ = st.Close() }()

	gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to init GCS client")
	}
	defer func() { _ = gcs.Close() }()

	// the hasher is never used by an export
	svc := application.NewService(st.Repo, nil, nil)
	object := helpers.ExportObjectName(cfg.GCSExportPrefix, time.Now())

	pr, pw := io.Pipe()
	counted := make(chan int, 1)
	go func() {
		n, err := svc.ExportNDJSON(ctx, pw)
		counted <- n
		_ = pw.CloseWithError(err)
	}()

	uri, err := helpers.UploadObject(ctx, gcs, cfg.GCSBucket, object, "application/x-ndjson",
		map[string]string{"source": cfg.AppName, "store": cfg.StoreDriver}, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		logger.WithError(err).Fatal("export failed")
	}
	logger.WithFields(logrus.Fields{"object": uri, "users": <-counted}).Info("export complete")
}
