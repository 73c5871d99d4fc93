package cmd

import (
	"errors"

	"queuectl/internal/admin"
	"queuectl/internal/store"
)

// Exit codes per spec.md §6.
const (
	exitOK                = 0
	exitValidation        = 1
	exitNotFound          = 2
	exitInvalidTransition = 3
	exitInternal          = 4
)

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, admin.ErrValidation), errors.Is(err, store.ErrDuplicateID):
		return exitValidation
	case errors.Is(err, store.ErrNotFound):
		return exitNotFound
	case errors.Is(err, store.ErrInvalidTransition):
		return exitInvalidTransition
	default:
		return exitInternal
	}
}
