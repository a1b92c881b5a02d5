package progress

import (
	"fmt"
	"math"
	"time"
)

// DailyStats counts the current calendar day's practice and resets when the
// day rolls over.
type DailyStats struct {
	Date     string
	Attempts int
	Correct  int
}

// Aggregate is the per-user total view derived from the attempt stream.
type Aggregate struct {
	TotalAttempts    int
	CorrectAttempts  int
	StreakDays       int
	LastActive       *time.Time
	LastPracticeDate *time.Time
	Daily            DailyStats
}

// ApplyToAggregate folds one attempt into the per-user aggregate. Streak
// accounting works on calendar days in loc: a repeat on the same day leaves
// the streak alone, the next consecutive day increments it, and any longer
// gap (or the first attempt ever) restarts it at 1.
func ApplyToAggregate(a Aggregate, correct bool, now time.Time, loc *time.Location) Aggregate {
	a.TotalAttempts++
	if correct {
		a.CorrectAttempts++
	}
	a.LastActive = &now

	today := CivilDate(now, loc)
	if a.Daily.Date != today {
		a.Daily = DailyStats{Date: today}
	}
	a.Daily.Attempts++
	if correct {
		a.Daily.Correct++
	}

	if a.LastPracticeDate == nil {
		a.StreakDays = 1
	} else {
		switch gap := daysBetween(*a.LastPracticeDate, now, loc); {
		case gap == 1:
			a.StreakDays++
		case gap != 0 || a.StreakDays == 0:
			a.StreakDays = 1
		}
	}
	a.LastPracticeDate = &now
	return a
}

// RolloverDaily clears daily stats that belong to an earlier calendar day.
// Invoked by the midnight scheduler so read views never show yesterday's
// numbers as today's.
func RolloverDaily(a Aggregate, now time.Time, loc *time.Location) Aggregate {
	if today := CivilDate(now, loc); a.Daily.Date != today {
		a.Daily = DailyStats{Date: today}
	}
	return a
}

// CivilDate renders the calendar date of t in loc as YYYY-MM-DD.
func CivilDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// daysBetween counts calendar-day boundaries crossed between a and b in loc.
// Rounding absorbs DST days that are not exactly 24h long.
func daysBetween(a, b time.Time, loc *time.Location) int {
	return int(math.Round(midnight(b, loc).Sub(midnight(a, loc)).Hours() / 24))
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Validate reports a corrupted aggregate coming back from storage.
func (a Aggregate) Validate() error {
	if a.TotalAttempts < 0 || a.CorrectAttempts < 0 || a.CorrectAttempts > a.TotalAttempts {
		return fmt.Errorf("aggregate has invalid counters: correct=%d total=%d", a.CorrectAttempts, a.TotalAttempts)
	}
	if a.StreakDays < 0 {
		return fmt.Errorf("aggregate has negative streak %d", a.StreakDays)
	}
	return nil
}
