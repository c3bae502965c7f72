package entity

import "fmt"

// FetchErrorKind classifies why a page could not be rendered.
type FetchErrorKind string

const (
	FetchNavigation FetchErrorKind = "navigation"
	FetchTimeout    FetchErrorKind = "timeout"
	FetchCrash      FetchErrorKind = "crash"
	FetchCancelled  FetchErrorKind = "cancelled"
)

// FetchError is the failure of one URL. The traversal records it and moves on.
type FetchError struct {
	URL  string
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FailedURL mirrors the `failed_urls` PostgreSQL table schema.
type FailedURL struct {
	JobID         string
	URL           string
	Depth         int
	ErrorType     string
	FailureReason string
}
