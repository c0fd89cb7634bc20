package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  *string `json:"name" validate:"omitempty,max=4"`
	Email *string `json:"email" validate:"omitempty,email"`
	Flag  *bool   `json:"flag"`
}

func TestValidate(t *testing.T) {
	long, bad := "toolong", "not-an-email"
	err := Validate(sample{Name: &long, Email: &bad})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be at most 4 characters long", details["name"])
	assert.Equal(t, "must be a valid email", details["email"])

	assert.NoError(t, Validate(sample{}))
}

func TestFields_DecodeErrors(t *testing.T) {
	var s sample
	err := json.Unmarshal([]byte(`{"flag": "yes"}`), &s)
	require.Error(t, err)

	fields := Fields(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "flag", fields[0].Field)
	assert.Equal(t, "must be a boolean", fields[0].Message)

	err = json.Unmarshal([]byte(`{"flag":`), &s)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}
