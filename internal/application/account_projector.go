package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-rest-service/internal/domain/entity"
)

// AccountIndexer keeps a search projection of accounts.
type AccountIndexer interface {
	Index(ctx context.Context, id int64, doc map[string]any) error
	Remove(ctx context.Context, id int64) error
}

// WelcomeSender notifies a newly created account holder.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, name, email string) error
}

// Projector applies account events to the read side: the search index and
// welcome notifications. Either collaborator may be nil.
type Projector struct {
	Index  AccountIndexer
	Mail   WelcomeSender
	Logger *logrus.Logger
}

func NewProjector(index AccountIndexer, mail WelcomeSender, logger *logrus.Logger) *Projector {
	return &Projector{Index: index, Mail: mail, Logger: logger}
}

// Handle processes one event. A returned error means the event should be retried.
func (p *Projector) Handle(ctx context.Context, evt entity.AccountEvent) error {
	switch evt.Type {
	case entity.AccountCreated, entity.AccountUpdated:
		if p.Index != nil {
			if err := p.Index.Index(ctx, evt.AccountID, evt.Account); err != nil {
				return fmt.Errorf("index account %d: %w", evt.AccountID, err)
			}
		}
		if evt.Type == entity.AccountCreated && p.Mail != nil {
			name, _ := evt.Account["name"].(string)
			email, _ := evt.Account["email"].(string)
			if email == "" {
				return nil
			}
			if err := p.Mail.SendWelcome(ctx, name, email); err != nil {
				return fmt.Errorf("welcome mail for account %d: %w", evt.AccountID, err)
			}
		}
	case entity.AccountDeleted:
		if p.Index != nil {
			if err := p.Index.Remove(ctx, evt.AccountID); err != nil {
				return fmt.Errorf("remove account %d: %w", evt.AccountID, err)
			}
		}
	default:
		if p.Logger != nil {
			p.Logger.WithField("event", evt.Type).Warn("unknown account event ignored")
		}
	}
	return nil
}
