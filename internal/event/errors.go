package event

import (
	"fmt"
	"strings"
)

// MalformedError marks a payload that is not a well-formed transaction
// message. Permanent: redelivering the same bytes cannot succeed.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed message: %s", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// ValidationError marks a decodable message that violates one or more field
// constraints. Reasons holds every failed constraint, not just the first.
// Permanent: a deterministically invalid message is never retried.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transaction: %s", strings.Join(e.Reasons, "; "))
}
