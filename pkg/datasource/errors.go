package datasource

import (
	"fmt"
	"net/http"
)

// NetworkError is returned when the request could not be performed or its
// body could not be read.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is returned for non-success statuses that are not treated as
// "no data".
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d (%s)", e.Status, http.StatusText(e.Status))
}

// FormatError is returned when the body is not the expected JSON list or
// when its records do not validate.
type FormatError struct {
	URL string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unexpected data format in %s: %v", e.URL, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
