package dataset

import "fmt"

// LoadError reports a source that could not be opened or parsed at all.
// A single malformed value never produces one.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
