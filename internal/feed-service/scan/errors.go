package scan

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured: sem ANTHROPIC_API_KEY; verificado antes de qualquer chamada
	ErrNotConfigured = errors.New("ANTHROPIC_API_KEY not configured")
	ErrMissingInput  = errors.New("missing imageData or mediaType")
	// ErrUnparseable: resposta sem texto ou texto que não é JSON
	ErrUnparseable = errors.New("unparseable scan response")
)

// UpstreamError é uma resposta não-2xx do serviço de visão
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("vision api http %d", e.Status)
}
