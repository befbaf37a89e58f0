package postal

import (
	"errors"
	"fmt"
)

// StatusError is returned when the upstream API answers with anything other
// than 200. The body is never classified in that case.
type StatusError struct {
	Pincode    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unable to fetch data for %s: HTTP status code %d", e.Pincode, e.StatusCode)
}

// FetchError wraps transport and read failures talking to the upstream API.
type FetchError struct {
	Pincode string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("network or API issue for %s: %v", e.Pincode, e.Err)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsStatusError checks if the error is a non-200 status gate failure
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// IsFetchError checks if the error is a transport failure
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// Describe renders a lookup error the way it is shown to end users.
func Describe(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("Error: HTTP Status Code %d", se.StatusCode)
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fmt.Sprintf("Error: Network or API issue. %v", fe.Err)
	}
	return fmt.Sprintf("Error: %v", err)
}
