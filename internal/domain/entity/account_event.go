package entity

import "time"

const (
	AccountCreated = "account.created"
	AccountUpdated = "account.updated"
	AccountDeleted = "account.deleted"
)

// AccountEvent describes a committed change to an account.
// Account is nil for deletions.
type AccountEvent struct {
	Type       string         `json:"type"`
	AccountID  int64          `json:"account_id"`
	Account    map[string]any `json:"account,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewAccountEvent(eventType string, a *Account) AccountEvent {
	evt := AccountEvent{Type: eventType, AccountID: a.ID, OccurredAt: time.Now().UTC()}
	if eventType != AccountDeleted {
		evt.Account = a.Serialize()
	}
	return evt
}
