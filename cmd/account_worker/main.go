package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/account-rest-service/config"
	"github.com/oksasatya/account-rest-service/internal/application"
	"github.com/oksasatya/account-rest-service/internal/infrastructure/messaging"
	"github.com/oksasatya/account-rest-service/internal/infrastructure/search"
	"github.com/oksasatya/account-rest-service/pkg/helpers"
	"github.com/oksasatya/account-rest-service/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env)

	if cfg.RabbitMQURL == "" {
		logger.Fatal("RABBITMQ_URL not configured")
	}

	var index application.AccountIndexer
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Fatal("elasticsearch client init failed")
	}
	if es != nil {
		index = search.NewAccountIndex(es, cfg.ESAccountsIndex)
	} else {
		logger.Warn("ELASTICSEARCH_ADDRS empty; search index will not be maintained")
	}

	var welcome application.WelcomeSender
	switch {
	case !cfg.MailSendEnabled:
		logger.Info("MAIL_SEND_ENABLED=false; welcome emails disabled")
	case cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "":
		logger.Fatal("Mailgun not configured")
	default:
		welcome = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.ServiceName)
	}

	projector := application.NewProjector(index, welcome, logger)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	// fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQAccountQueue); err != nil {
		logger.WithError(err).Fatal("queue declare")
	}

	msgs, err := ch.Consume(cfg.RabbitMQAccountQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		messaging.Consume(ctx, msgs, projector.Handle, 15*time.Second, logger)
		close(done)
	}()

	logger.Infof("account worker listening on queue=%s", cfg.RabbitMQAccountQueue)
	<-ctx.Done()
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
