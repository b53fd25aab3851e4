package artifact

import "fmt"

var (
	// ErrNotFound is returned when no mockup exists for the given id in the
	// underlying store.
	ErrNotFound = fmt.Errorf("mockup not found")
)
