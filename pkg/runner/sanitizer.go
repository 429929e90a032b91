package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxInputSize bounds a single command line or text field in bytes.
// Processes may raise it from configuration at startup.
var MaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Typographic operators people paste from documents, mapped to the ASCII
// symbols the arithmetic context knows.
var operatorForms = strings.NewReplacer(
	"−", "-", // minus sign
	"–", "-", // en dash
	"×", "*", // multiplication sign
	"⋅", "*", // dot operator
	"÷", "/", // division sign
	"∕", "/", // division slash
)

// SanitizeInput enforces MaxInputSize, validates UTF-8, drops control
// characters other than tab, newline and carriage return, and folds
// typographic operators to ASCII.
func SanitizeInput(input string) (string, error) {
	if len(input) > MaxInputSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), MaxInputSize)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return -1
		}
		return r
	}, input)
	return operatorForms.Replace(clean), nil
}
