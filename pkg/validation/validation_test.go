package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("client@example.com"))
	assert.True(t, ValidateEmail("  Client.Name+site@Example.co.in "))
	assert.False(t, ValidateEmail("client@"))
	assert.False(t, ValidateEmail("not an email"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+91 98765 43210", true},
		{"(022) 2345-6789", true},
		{"9876543210", true},
		{"12345", false},
		{"call me", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePhone(tt.phone))
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello\nworld", SanitizeString("  hello\x00\nworld\x07 "))
	assert.Equal(t, "Quote  Bcc: x", SanitizeHeader("Quote\r\nBcc: x"))
}
