package fxsync

import "fmt"

// ProviderError is a fetch-side failure: network, HTTP status or a payload
// the provider client could not parse. It aborts the run.
type ProviderError struct {
	Provider Provider
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.Status, e.Err)
	}

	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// UploadError is returned when the destination rejects a batch. The batch is
// not retried within the run.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("destination rejected batch: status %d: %s", e.Status, e.Body)
}
