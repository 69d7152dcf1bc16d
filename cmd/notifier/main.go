package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"facesense/internal/config"
	"facesense/internal/notify"
	"facesense/internal/queue"
	"facesense/internal/store"
)

// Notifier drains the notification queue. Delivery is a placeholder: each
// payload is logged where a mail/SMS/push provider would be called.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		redisClient := store.NewRedis(cfg.RedisAddr)
		if !redisClient.Healthy(ctx) {
			log.Warn("redis not reachable, notifier will retry on consume")
		}
		q = queue.NewRedisQueue(redisClient.Client, "facesense:notifications")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.WithError(err).Fatal("queue consume init failed")
	}

	log.Info("notifier started, waiting for messages")
	for msg := range messages {
		if msg.Type != notify.MessageType {
			continue
		}
		log.WithFields(log.Fields{
			"id":      msg.ID,
			"payload": string(msg.Body),
		}).Info("notification delivered (placeholder)")
	}

	log.Info("notifier stopped")
}
