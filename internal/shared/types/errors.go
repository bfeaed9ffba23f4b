package types

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksFailed signals that the finalized tally failed the run.
	ErrChecksFailed = errors.New("accessibility checks failed")
	// ErrNoTargetsFound is returned when discovery yields an empty catalog.
	ErrNoTargetsFound = errors.New("no targets found in the catalog")
)

// LaunchError means the browser engine could not be started. It is fatal
// and aborts the run before discovery.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch browser: %v", e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// DiscoveryError means the catalog endpoint never became queryable or
// exposed an unexpected inventory shape. It is fatal and aborts the run
// before any pool is created.
type DiscoveryError struct {
	Endpoint string
	Err      error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("target discovery failed for %s: %v", e.Endpoint, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
