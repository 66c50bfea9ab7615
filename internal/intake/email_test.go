package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"USER@EXAMPLE.COM", true},
		{"first.last@mail.example.org", true},
		{"user@[192.168.0.1]", true},
		{"", false},
		{"bad-email", false},
		{"user@", false},
		{"@example.com", false},
		{"user@host", false},
		{"user@example.c", false},
		{"user name@example.com", false},
		{"user@exa mple.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidEmail(tt.email), "email %q", tt.email)
	}
}
