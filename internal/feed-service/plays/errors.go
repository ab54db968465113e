package plays

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("play not found")

// ValidationError lista os campos rejeitados antes de qualquer escrita
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid play: " + strings.Join(e.Fields, ", ")
}
