package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "password123", false},
		{"minimum length", "12345678", false},
		{"too short", "1234567", true},
		{"too long", strings.Repeat("a", 129), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePseudo(t *testing.T) {
	tests := []struct {
		name    string
		pseudo  string
		wantErr bool
	}{
		{"valid", "night_owl", false},
		{"minimum length", "abc", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 31), true},
		{"leading whitespace", " padded", true},
		{"trailing whitespace", "padded ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePseudo(tt.pseudo)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "user@example.com", false},
		{"subdomain", "user@mail.campus.edu", false},
		{"missing at", "userexample.com", true},
		{"missing tld", "user@example", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRoomName(t *testing.T) {
	assert.NoError(t, ValidateRoomName("Study Hall"))
	assert.Error(t, ValidateRoomName("   "))
	assert.Error(t, ValidateRoomName(strings.Repeat("x", 61)))
}

func TestValidateMessageContent(t *testing.T) {
	assert.NoError(t, ValidateMessageContent("hello"))
	assert.Error(t, ValidateMessageContent("  "))
	assert.Error(t, ValidateMessageContent(strings.Repeat("x", 4001)))
}
