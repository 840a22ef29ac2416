package owm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is a configuration failure: the server-held credential is
// absent. It is reported before any network call is attempted and never
// carries upstream details.
var ErrMissingAPIKey = errors.New("openweather api key is not configured")

// UpstreamError is a non-success response from the provider. Status and Body
// are passed through verbatim for diagnostics.
type UpstreamError struct {
	Status int
	Body   json.RawMessage
}

func (e *UpstreamError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("openweather returned status %d", e.Status)
	}
	return fmt.Sprintf("openweather returned status %d: %s", e.Status, e.Body)
}
