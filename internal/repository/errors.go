package repository

import "errors"

var (
	ErrFetchTimeout        = errors.New("page did not become ready before the timeout")
	ErrNavigationFailed    = errors.New("navigation failed")
	ErrRendererCrashed     = errors.New("browser renderer crashed")
	ErrRendererUnavailable = errors.New("browser renderer could not be started")
	ErrExtractionFailed    = errors.New("content extraction failed")
	ErrJobNotFound         = errors.New("job not found")
	ErrJobExists           = errors.New("job id already taken")
	ErrQueueEmpty          = errors.New("job queue is empty")
)
