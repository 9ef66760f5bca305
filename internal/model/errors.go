package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports bad caller parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCapabilityUnsupported reports an operation a venue does not offer.
	ErrCapabilityUnsupported = errors.New("capability unsupported")
	// ErrNoDataAvailable reports a valid call that returned nothing to analyze.
	ErrNoDataAvailable = errors.New("no data available")
	// ErrUpstreamFailure reports a transport, status or decoding failure.
	ErrUpstreamFailure = errors.New("upstream failure")
	// ErrAggregationPartialFailure reports that some venues failed during a
	// multi-venue operation.
	ErrAggregationPartialFailure = errors.New("aggregation partial failure")
)

// VenueError attaches the venue and operation to an underlying error.
type VenueError struct {
	Venue string
	Op    string
	Err   error
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Venue, e.Op, e.Err)
}

func (e *VenueError) Unwrap() error {
	return e.Err
}

// WrapVenue wraps err with venue context. A nil err stays nil.
func WrapVenue(venue, op string, err error) error {
	if err == nil {
		return nil
	}
	return &VenueError{Venue: venue, Op: op, Err: err}
}

// Unsupported builds the error a venue returns for an operation it does not offer.
func Unsupported(venue, op string) error {
	return &VenueError{Venue: venue, Op: op, Err: ErrCapabilityUnsupported}
}

// InvalidInputf formats an ErrInvalidInput with detail.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
