package dispatch

import (
	"errors"
	"strings"
)

// ErrEmptyInput is returned when the submitted text is blank
var ErrEmptyInput = errors.New("input is empty")

// Blank reports whether input has no content once trimmed
func Blank(input string) bool {
	return strings.TrimSpace(input) == ""
}
