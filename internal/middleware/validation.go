package middleware

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

var chatIDRe = regexp.MustCompile(`^[A-Za-z0-9@._:+-]{3,128}$`)

// ValidateMessageText validates inbound message text.
func ValidateMessageText(text string) error {
	if len(text) == 0 {
		return errors.New("text cannot be empty")
	}
	if len(text) > 8192 {
		return errors.New("text exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("text must be valid UTF-8")
	}
	return nil
}

// ValidateChatID validates a chat identity.
func ValidateChatID(id string) error {
	if !chatIDRe.MatchString(id) {
		return errors.New("invalid chat ID format")
	}
	return nil
}

// ValidateFolio validates a ticket folio.
func ValidateFolio(folio string) error {
	if matched := folioRe.MatchString(folio); !matched {
		return errors.New("invalid folio format")
	}
	return nil
}

var folioRe = regexp.MustCompile(`^[A-Z]{2,5}-\d{4,8}$`)
