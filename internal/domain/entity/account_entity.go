package entity

import (
	"strings"
	"time"
)

// DateJoinedLayout is the ISO-8601 layout used when serializing DateJoined.
const DateJoinedLayout = "2006-01-02T15:04:05.999999Z07:00"

// Account is the aggregate root of the account domain.
// PhoneNumber and Address are nil when not provided.
type Account struct {
	ID          int64
	Name        string
	Email       string
	PhoneNumber *string
	Address     *string
	Disabled    bool
	DateJoined  time.Time
}

// AccountInput is the transport form accepted by create and update.
// Pointer fields distinguish an absent key from a zero value.
type AccountInput struct {
	Name        *string `json:"name" validate:"omitempty,max=64"`
	Email       *string `json:"email" validate:"omitempty,max=120"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
	Address     *string `json:"address" validate:"omitempty,max=200"`
	Disabled    *bool   `json:"disabled"`
}

// Serialize renders the account as a flat key/value map.
func (a *Account) Serialize() map[string]any {
	var joined any
	if !a.DateJoined.IsZero() {
		joined = a.DateJoined.UTC().Format(DateJoinedLayout)
	}
	return map[string]any{
		"id":           a.ID,
		"name":         a.Name,
		"email":        a.Email,
		"phone_number": optional(a.PhoneNumber),
		"address":      optional(a.Address),
		"disabled":     a.Disabled,
		"date_joined":  joined,
	}
}

// Deserialize replaces the mutable fields of a from in.
// name and email are required; the first one missing is reported.
// On error the account is left untouched.
func (a *Account) Deserialize(in AccountInput) error {
	if blank(in.Name) {
		return MissingField("name")
	}
	if blank(in.Email) {
		return MissingField("email")
	}
	a.Name = *in.Name
	a.Email = strings.TrimSpace(*in.Email)
	a.PhoneNumber = in.PhoneNumber
	a.Address = in.Address
	a.Disabled = in.Disabled != nil && *in.Disabled
	return nil
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
