package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomerKey(t *testing.T) {
	cases := []struct {
		name  string
		email string
		want  string
	}{
		{"Aissatou", "Aissatou@Example.com", "aissatou@example.com"},
		{"Aissatou", "  aissatou@example.com  ", "aissatou@example.com"},
		{"Aissatou", "", "Aissatou"},
		{"  Aissatou  ", "", "Aissatou"},
		{"", "", UnknownCustomer},
		{"   ", "   ", UnknownCustomer},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CustomerKey(tc.name, tc.email), "name=%q email=%q", tc.name, tc.email)
	}
}

func TestDueRemainingFallsBackToAmount(t *testing.T) {
	due := Due{Amount: 80}
	assert.Equal(t, 80.0, due.Remaining())

	remaining := 25.0
	due.RemainingAmount = &remaining
	assert.Equal(t, 25.0, due.Remaining())
}
