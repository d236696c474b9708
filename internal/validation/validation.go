// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 128
	minPseudoLen   = 3
	maxPseudoLen   = 30
	maxMessageLen  = 4000
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidatePassword checks if a password meets the minimum requirements.
// The hash is computed only after this passes.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLen)
	}
	return nil
}

// ValidatePseudo checks if a display pseudo meets requirements.
func ValidatePseudo(pseudo string) error {
	if len(pseudo) < minPseudoLen {
		return fmt.Errorf("pseudo must be at least %d characters long", minPseudoLen)
	}
	if len(pseudo) > maxPseudoLen {
		return fmt.Errorf("pseudo must not exceed %d characters", maxPseudoLen)
	}
	if strings.TrimSpace(pseudo) != pseudo {
		return fmt.Errorf("pseudo cannot start or end with whitespace")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	return nil
}

// ValidateMessageContent checks a chat message body.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("message content is required")
	}
	if len(content) > maxMessageLen {
		return fmt.Errorf("message must not exceed %d characters", maxMessageLen)
	}
	return nil
}

// ValidateRoomName checks if a room name is acceptable.
func ValidateRoomName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("room name is required")
	}
	if len(trimmed) > 60 {
		return fmt.Errorf("room name must not exceed 60 characters")
	}
	return nil
}
