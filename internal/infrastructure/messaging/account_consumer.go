package messaging

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-rest-service/internal/domain/entity"
)

// HandleFunc processes one decoded account event.
type HandleFunc func(ctx context.Context, evt entity.AccountEvent) error

// Consume handles deliveries until the channel closes or ctx is done.
// Undecodable messages are dropped. A failed message is requeued once and
// dropped when it fails again after redelivery.
func Consume(ctx context.Context, deliveries <-chan amqp.Delivery, handle HandleFunc, timeout time.Duration, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			process(ctx, d, handle, timeout, logger)
		}
	}
}

func process(ctx context.Context, d amqp.Delivery, handle HandleFunc, timeout time.Duration, logger *logrus.Logger) {
	log := logger.WithFields(logrus.Fields{"message_id": d.MessageId, "type": d.Type})

	var evt entity.AccountEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		log.WithError(err).Warn("bad account event")
		_ = d.Nack(false, false)
		return
	}

	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := handle(c, evt); err != nil {
		requeue := !d.Redelivered
		log.WithError(err).WithField("requeue", requeue).Error("account event failed")
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}
