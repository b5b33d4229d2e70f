package rawg

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("rawg %s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("rawg %s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
