package record

import "fmt"

// FetchKind classifies a failed query. Every kind is recoverable: the caller
// logs the failure, skips persisting that pair and moves on.
type FetchKind string

const (
	Unauthorized     FetchKind = "unauthorized"
	ServerError      FetchKind = "server_error"
	TransportFailure FetchKind = "transport_failure"
	Timeout          FetchKind = "timeout"
)

type FetchError struct {
	Kind   FetchKind
	Status int
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case ServerError:
		return fmt.Sprintf("fetch %s: server error (status %d)", e.URL, e.Status)
	case Unauthorized:
		return fmt.Sprintf("fetch %s: unauthorized (status %d)", e.URL, e.Status)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
