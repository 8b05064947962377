package dataset

import "fmt"

// MissingInputError reports an input source that does not exist or cannot be opened.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input %s unavailable: %v", e.Path, e.Err)
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}
