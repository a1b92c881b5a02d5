package progress

import (
	"fmt"
	"time"
)

// MasteryMinAttempts is the sample size below which the mastery tier is not
// recomputed and keeps its prior value.
const MasteryMinAttempts = 5

// Tracker is the per-(user, verb) aggregate. It is a pure function of the
// attempt history for that pair and is never deleted once created.
type Tracker struct {
	Verb          string
	Attempts      int
	Correct       int
	MasteryTier   int
	LastPracticed *time.Time
}

// ApplyToTracker folds one attempt into a tracker. A nil tracker means this
// is the first attempt for the pair. The input is not mutated.
func ApplyToTracker(t *Tracker, verb string, correct bool, now time.Time) Tracker {
	next := Tracker{Verb: verb}
	if t != nil {
		next = *t
	}
	next.Attempts++
	if correct {
		next.Correct++
	}
	next.LastPracticed = &now
	if next.Attempts >= MasteryMinAttempts {
		next.MasteryTier = tierForRate(SuccessRate(next.Correct, next.Attempts))
	}
	return next
}

// SuccessRate returns correct/attempts, or 0 for an empty history.
func SuccessRate(correct, attempts int) float64 {
	if attempts == 0 {
		return 0
	}
	return float64(correct) / float64(attempts)
}

func tierForRate(rate float64) int {
	switch {
	case rate >= 0.9:
		return 5
	case rate >= 0.8:
		return 4
	case rate >= 0.7:
		return 3
	case rate >= 0.6:
		return 2
	case rate >= 0.5:
		return 1
	default:
		return 0
	}
}

// Validate reports a corrupted tracker. Counter invariants hold by
// construction; a violation coming back from storage is a programming
// error and must abort the operation instead of being coerced.
func (t Tracker) Validate() error {
	if t.Attempts < 0 || t.Correct < 0 || t.Correct > t.Attempts {
		return fmt.Errorf("tracker %q has invalid counters: correct=%d attempts=%d", t.Verb, t.Correct, t.Attempts)
	}
	if t.MasteryTier < 0 || t.MasteryTier > 5 {
		return fmt.Errorf("tracker %q has invalid mastery tier %d", t.Verb, t.MasteryTier)
	}
	return nil
}
