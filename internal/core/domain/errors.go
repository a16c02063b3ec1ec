package domain

import (
	"errors"
	"fmt"
)

var (
	ErrLawNotFound     = errors.New("law not found")
	ErrArticleNotFound = errors.New("article not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// IsNotFound reports whether err is one of the expected "no such record"
// outcomes. These are normal control-flow values for the engine, never
// surfaced to callers as failures.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLawNotFound) || errors.Is(err, ErrArticleNotFound)
}
