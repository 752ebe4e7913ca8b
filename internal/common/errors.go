package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrAuthentication is returned when the block explorer rejects the API key.
var ErrAuthentication = errors.New("block explorer rejected the API key")

// ErrTooManyPageFailures aborts pagination after too many consecutive failed pages.
var ErrTooManyPageFailures = errors.New("too many consecutive page failures")

// NetworkError is a transport failure talking to the RPC, the explorer or the indexer.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is a response whose shape or content cannot be used.
type MalformedResponseError struct {
	Op     string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Reason)
}

// PageError marks a failure scoped to the page at Offset. Pagination continues past it.
type PageError struct {
	Offset int
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page at offset %d: %v", e.Offset, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
