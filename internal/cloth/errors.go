package cloth

import "errors"

var (
	// ErrInvalidLayout indicates non-positive grid dimensions or spacing.
	ErrInvalidLayout = errors.New("cloth: invalid layout")

	// ErrInvalidParams indicates a tunable outside its valid range.
	ErrInvalidParams = errors.New("cloth: invalid params")

	// ErrUnknownParam is returned by SetParam for names it does not recognise.
	ErrUnknownParam = errors.New("cloth: unknown param")
)
