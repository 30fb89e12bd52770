package service

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	maxEmailLen    = 255
	minPasswordLen = 3
	// bcrypt rejects inputs longer than 72 bytes.
	maxPasswordBytes = 72
	maxItemNameLen   = 200
	// Quantities are stored as 32-bit integers.
	maxQuantity = math.MaxInt32
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return invalid("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if !usernamePattern.MatchString(username) {
		return invalid("username may contain only letters, digits, '_', '.' and '-'")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLen {
		return invalid("email must be 1-%d characters", maxEmailLen)
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return invalid("email must look like name@domain")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return invalid("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func validateItem(name string, quantity int) error {
	if strings.TrimSpace(name) == "" {
		return invalid("item name is required")
	}
	if utf8.RuneCountInString(name) > maxItemNameLen {
		return invalid("item name must be at most %d characters", maxItemNameLen)
	}
	if quantity < 0 {
		return invalid("quantity must not be negative")
	}
	if quantity > maxQuantity {
		return invalid("quantity must be at most %d", maxQuantity)
	}
	return nil
}
