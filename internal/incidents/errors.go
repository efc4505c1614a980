package incidents

import "errors"

// Sentinel errors surfaced to handlers.
var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrUpdateNotFound   = errors.New("incident update not found")
)
