package policy

import (
	"fmt"
	"strings"
)

// RejectionError reports configuration the allow-list refused to
// forward. The offending keys are always named and surfaced verbatim to
// the caller; nothing is dropped silently.
type RejectionError struct {
	Op     string
	Keys   []string
	Reason string
}

func (e *RejectionError) Error() string {
	msg := fmt.Sprintf("%s: rejected key(s): %s", e.Op, strings.Join(e.Keys, ", "))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// ValueError reports a permitted key whose value failed to parse or
// violated a constraint.
type ValueError struct {
	Key    string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Reason)
}
