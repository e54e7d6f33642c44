package sgml

import (
	"errors"
	"fmt"
)

var (
	ErrUnterminatedTag = errors.New("unterminated tag")
	ErrEmptyTagName    = errors.New("empty tag name")
	ErrInvalidTagName  = errors.New("invalid byte in tag name")
)

// TokenizeError reports malformed tag syntax. It is fatal for the file.
type TokenizeError struct {
	Offset int // byte offset of the offending byte
	Err    error
}

func (e *TokenizeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("tokenize: %v at offset %d", e.Err, e.Offset)
}

func (e *TokenizeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
