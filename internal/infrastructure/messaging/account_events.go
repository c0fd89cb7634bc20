package messaging

import (
	"context"

	"github.com/oksasatya/account-rest-service/internal/domain/entity"
)

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// AccountEvents publishes account events as JSON messages typed by event name.
type AccountEvents struct {
	pub JSONPublisher
}

func NewAccountEvents(pub JSONPublisher) *AccountEvents {
	return &AccountEvents{pub: pub}
}

func (e *AccountEvents) PublishAccountEvent(ctx context.Context, evt entity.AccountEvent) error {
	return e.pub.PublishJSON(ctx, evt.Type, evt)
}
