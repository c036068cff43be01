package calc

import "fmt"

// DataError reports signal matrices that cannot be processed as given
type DataError struct {
	Op     string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Op, e.Reason)
}

func dataErrorf(op string, format string, args ...interface{}) error {
	return &DataError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
