package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrCollectionAborted is returned when general info or fixtures could
	// not be fetched and the run stopped before any player detail request.
	ErrCollectionAborted = errors.New("collection aborted")
)
