package progress

import (
	"time"

	sr "github.com/example/hamprep/internal/spaced_repetition"
)

// StudyStreak counts consecutive calendar days, ending today, on which at
// least one session started. Days are taken in now's location. A streak
// without a session today is 0.
func StudyStreak(sessionStarts []time.Time, now time.Time) int {
	days := make(map[string]struct{}, len(sessionStarts))
	for _, s := range sessionStarts {
		days[s.In(now.Location()).Format(time.DateOnly)] = struct{}{}
	}

	streak := 0
	for {
		if _, ok := days[sr.ReviewDate(now, -streak).Format(time.DateOnly)]; !ok {
			return streak
		}
		streak++
	}
}
