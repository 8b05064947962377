package processing

import "fmt"

// FormatError reports a line with the wrong number of fields or a populated
// field holding malformed text.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("format error in %s: %q", e.Field, e.Value)
	}
	return fmt.Sprintf("format error in %s: %q: %v", e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ValidationError reports a well-formed value outside its permitted range.
type ValidationError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be within the range %g to %g degrees, got %g", e.Field, e.Min, e.Max, e.Value)
}
