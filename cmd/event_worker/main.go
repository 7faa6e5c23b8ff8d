package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-identity-service/config"
	"github.com/oksasatya/go-ddd-identity-service/internal/infrastructure/messaging"
	"github.com/oksasatya/go-ddd-identity-service/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-identity-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-identity-service/pkg/mailer"
)

const consumerTag = "identity-event-worker"

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env, cfg.LogLevel)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	handler := &messaging.EventHandler{Cfg: cfg, Logger: logger}

	if len(cfg.ElasticsearchAddrs) > 0 {
		es, err := helpers.NewESClient(cfg.ElasticsearchAddrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Fatal("elasticsearch client init failed")
		}
		c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := helpers.EnsureUsersIndex(c, es, cfg.ESUsersIndex); err != nil {
			logger.WithError(err).Warn("could not ensure users index")
		}
		cancel()
		handler.Index = search.NewUserIndex(es, cfg.ESUsersIndex)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	switch {
	case !cfg.MailSendEnabled:
		logger.Info("MAIL_SEND_ENABLED=false; no emails will be sent")
	case !mg.Configured():
		logger.Warn("Mailgun not configured; no emails will be sent")
	default:
		handler.Mail = mg
	}

	queue, err := helpers.DialRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue, cfg.AppName)
	if err != nil {
		logger.WithError(err).Fatal("rabbitmq")
	}
	defer queue.Close()

	// Prefetch for fair dispatch
	msgs, err := queue.Consume(consumerTag, 16)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			c, cancelMsg := context.WithTimeout(ctx, 15*time.Second)
			handler.Deliver(c, msg)
			cancelMsg()
		}
	}()

	logger.Infof("event worker listening on queue=%s", cfg.RabbitMQEventsQueue)
	select {
	case <-stop:
	case <-done:
		logger.Warn("delivery channel closed")
	}
	logger.Info("shutting down...")
	_ = queue.Cancel(consumerTag)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
