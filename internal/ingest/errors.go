package ingest

import (
	"errors"
	"fmt"
)

// Reason is the stable failure tag reported to callers when ingestion
// aborts. Exactly one stage is blamed per failure.
type Reason string

const (
	ReasonFetch   Reason = "fetch"
	ReasonExtract Reason = "extract"
	ReasonEmbed   Reason = "embed"
	ReasonStore   Reason = "store"
)

// Failure wraps a stage error with its reason tag.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Reason)
	}
	return fmt.Sprintf("%s: %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(reason Reason, err error) *Failure {
	return &Failure{Reason: reason, Err: err}
}

// ReasonOf extracts the failure reason from err, or empty when err carries
// no ingestion failure.
func ReasonOf(err error) Reason {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return ""
}
