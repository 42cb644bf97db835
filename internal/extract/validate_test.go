package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Boundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty", "", ErrEmpty},
		{"whitespace only", "   \n\t  ", ErrEmpty},
		{"19 chars rejected", strings.Repeat("a", 19), ErrTooShort},
		{"20 chars accepted", strings.Repeat("a", 20), nil},
		{"max length accepted", strings.Repeat("a", MaxChars), nil},
		{"over max rejected", strings.Repeat("a", MaxChars+1), ErrTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Length is counted on the trimmed text in runes, not bytes.
func TestValidate_CountsRunesAfterTrim(t *testing.T) {
	t.Parallel()
	padded := "   " + strings.Repeat("ü", 20) + "   "
	if err := Validate(padded); err != nil {
		t.Fatalf("20 runes of multibyte text should pass: %v", err)
	}
	if err := Validate("  " + strings.Repeat("ü", 19)); !errors.Is(err, ErrTooShort) {
		t.Fatalf("19 runes should fail short: %v", err)
	}
}
