package queue

import (
	"database/sql"
	"errors"
	"strings"
)

// Sentinel errors for the refresh queue. An unavailable queue is a
// degraded condition rather than a request failure: the marketplace
// action already happened, only the snapshot refresh is lost until the
// next read re-fetches the lead.
var (
	// ErrQueueUnavailable means the backing store could not take or serve jobs
	ErrQueueUnavailable = errors.New("refresh queue unavailable")

	// ErrJobNotFound means the job does not exist or was already finalized
	ErrJobNotFound = errors.New("refresh job not found")

	// ErrInvalidPayload means the payload carries no usable lead id
	ErrInvalidPayload = errors.New("refresh payload missing lead id")
)

// IsUnavailableError reports whether err stems from queue unavailability.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrQueueUnavailable)
}

// isDatabaseUnavailable classifies driver errors that mean the database
// itself is unreachable, as opposed to a bad statement.
func isDatabaseUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return true
	}

	msg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"timeout",
		"too many connections",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
