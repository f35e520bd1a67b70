package errors

import (
	"strings"
	"unicode"
)

// MaxTokenLength bounds identifiers written into problem text.
const MaxTokenLength = 128

// ValidateToken checks that an identifier can be written into problem text
// as a single atom. It rejects:
//   - Empty names
//   - Names longer than MaxTokenLength
//   - Whitespace and control characters
//   - Parentheses and ";" (comment start)
//
// what names the kind of identifier for the message, such as "agent".
func ValidateToken(what, token string) error {
	if token == "" {
		return New(ErrCodeInvalidToken, "%s name cannot be empty", what)
	}
	if len(token) > MaxTokenLength {
		return New(ErrCodeInvalidToken, "%s name too long (max %d characters)", what, MaxTokenLength)
	}
	for _, r := range token {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidToken, "%s name %q contains whitespace or control characters", what, token)
		}
	}
	if strings.ContainsAny(token, "();") {
		return New(ErrCodeInvalidToken, "%s name %q contains reserved characters", what, token)
	}
	return nil
}

// ValidateTokens validates a list of identifiers of the same kind.
func ValidateTokens(what string, tokens []string) error {
	for _, t := range tokens {
		if err := ValidateToken(what, t); err != nil {
			return err
		}
	}
	return nil
}
