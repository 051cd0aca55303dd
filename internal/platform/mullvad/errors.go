package mullvad

import (
	"errors"
	"fmt"
)

// ErrMalformedAuthResponse is returned when the authorization answer is not
// an "ipv4/len,ipv6/len" pair.
var ErrMalformedAuthResponse = errors.New("malformed authorization response")

// APIError is returned for any non-2xx answer of the provider.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("mullvad %s error: HTTP %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("mullvad %s error: HTTP %d: %s", e.Operation, e.StatusCode, e.Body)
}
