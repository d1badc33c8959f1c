package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/SundayYogurt/eventhub_service/config"
	"github.com/SundayYogurt/eventhub_service/infra/queue"
	"github.com/SundayYogurt/eventhub_service/internal/notify"
	"github.com/SundayYogurt/eventhub_service/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// ---------- Load Config ----------
	cfg := config.LoadConfig()

	zl, err := logger.Init(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zl.Sync()

	if cfg.KafkaBroker == "" {
		zl.Fatal("KAFKA_BROKER is required for the notifier")
	}
	zl.Info("notifier starting",
		zap.String("broker", cfg.KafkaBroker),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group_id", cfg.KafkaGroupID),
	)

	// ---------- Init Service ----------
	sender := notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	}, zl)
	handler := notify.NewEventHandler(notify.NewMailService(sender, cfg.BaseURL), zl)

	// ---------- Init Kafka Consumer ----------
	consumer := queue.NewKafkaConsumer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaGroupID,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
		handler,
		zl,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------- Start Listening ----------
	zl.Info("notifier listening for events")
	if err := consumer.Listen(ctx); err != nil {
		zl.Error("consumer stopped", zap.Error(err))
	}
	zl.Info("notifier stopped")
}
