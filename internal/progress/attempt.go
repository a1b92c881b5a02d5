package progress

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyVerb = errors.New("verb must not be empty")

// AttemptRecord is one practice trial for a single verb. Records are
// immutable after creation; the ID doubles as an idempotency key so the
// server can deduplicate redelivered attempts.
type AttemptRecord struct {
	ID        string    `json:"id"`
	Verb      string    `json:"verb"`
	Correct   bool      `json:"correct"`
	Timestamp time.Time `json:"timestamp"`
}

// NormalizeVerb maps user input onto the canonical dictionary key form.
func NormalizeVerb(verb string) string {
	return strings.ToLower(strings.TrimSpace(verb))
}

// NewAttempt validates and normalizes the verb, stamps the record and
// assigns its idempotency key.
func NewAttempt(verb string, correct bool, now time.Time) (AttemptRecord, error) {
	v := NormalizeVerb(verb)
	if v == "" {
		return AttemptRecord{}, ErrEmptyVerb
	}
	return AttemptRecord{
		ID:        uuid.NewString(),
		Verb:      v,
		Correct:   correct,
		Timestamp: now,
	}, nil
}
