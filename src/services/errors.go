package services

import "errors"

var (
	// ErrParsingFailed indicates the raw rows could not be normalized at all.
	ErrParsingFailed = errors.New("parsing statement rows failed")

	// Terminal job failures. Mutually exclusive; exactly one reason is
	// surfaced per failed job.
	ErrTransferFailure = errors.New("document transfer failed")
	ErrJobTimeout      = errors.New("timed out waiting for extraction result")
	ErrExternalFailure = errors.New("extraction service reported failure")

	// ErrJobNotFound indicates an unknown or already-released correlation token.
	ErrJobNotFound = errors.New("no job tracked for token")
)
