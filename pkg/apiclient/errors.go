package apiclient

import "fmt"

// APIError carries the HTTP status and server-provided message of a failed
// backend request.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("apiclient: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("apiclient: %s (status %d)", e.Message, e.Status)
}
