package search

import "errors"

var (
	// ErrIndexUnavailable is returned when no index snapshot is loaded.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrSearchInProgress is returned by an engine that rejects concurrent
	// queries while one is already running.
	ErrSearchInProgress = errors.New("search already in progress")
	// ErrNoSource is returned by Reload before any source was loaded.
	ErrNoSource = errors.New("no index source loaded")
)
