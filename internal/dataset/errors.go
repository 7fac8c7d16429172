package dataset

import "fmt"

// LoadError reports a dataset that could not be fetched or does not match the
// expected schema. It is fatal at startup.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(source string, err error) error {
	return &LoadError{Source: source, Err: err}
}
