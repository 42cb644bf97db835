package extract

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MinChars is the minimum text length the text detector accepts.
	MinChars = 20
	// MaxChars caps text length to keep detector calls bounded.
	MaxChars = 100000
)

var (
	ErrEmpty    = errors.New("no text content found in document")
	ErrTooShort = errors.New("document too short")
	ErrTooLong  = errors.New("document too long")
)

// Validate is the only gate between extracted text and the text detector.
// A 19-character text fails, a 20-character text passes, and anything over
// MaxChars fails.
func Validate(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmpty
	}
	count := len([]rune(trimmed))
	if count < MinChars {
		return fmt.Errorf("%w: %d chars, minimum %d required", ErrTooShort, count, MinChars)
	}
	if count > MaxChars {
		return fmt.Errorf("%w: %d chars, maximum %d allowed", ErrTooLong, count, MaxChars)
	}
	return nil
}
