package spaced_repetition

import (
	"math"
	"time"
)

// Storage-scale constants. Ease factors are kept as integers scaled by 100
// everywhere outside the update formula.
const (
	DefaultEaseFactor = 250
	MinEaseFactor     = 130

	// A question is mastered after this many unbroken correct answers
	// once its interval has grown to at least MasteryIntervalDays.
	MasteryRepetitions  = 3
	MasteryIntervalDays = 21
)

const (
	firstInterval  = 1
	secondInterval = 6
	minEase        = float64(MinEaseFactor) / 100
)

// State is the scheduling state of one user×question pair.
type State struct {
	EaseFactor         int        `json:"easeFactor"`
	Interval           int        `json:"interval"`
	ConsecutiveCorrect int        `json:"consecutiveCorrect"`
	NextReviewDate     *time.Time `json:"nextReviewDate"`
	IsMastered         bool       `json:"isMastered"`
}

// DefaultState is the implicit state of a question the user has never answered.
func DefaultState() State {
	return State{EaseFactor: DefaultEaseFactor}
}

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	now func() time.Time
}

// NewSM2 creates a scheduler reading "today" from the wall clock.
func NewSM2() *SM2 {
	return &SM2{now: time.Now}
}

// NewSM2WithClock creates a scheduler with an injected clock. The clock's
// location decides where calendar days start.
func NewSM2WithClock(now func() time.Time) *SM2 {
	if now == nil {
		now = time.Now
	}
	return &SM2{now: now}
}

// Now returns the scheduler's current time.
func (sm *SM2) Now() time.Time {
	return sm.now()
}

// Process computes the next state after an answer of the given quality.
func (sm *SM2) Process(quality QualityResponse, prior State) State {
	return CalculateNextReview(quality, prior, sm.now())
}

// IsDue reports whether a question with the given next review date should
// be shown today.
func (sm *SM2) IsDue(nextReviewDate *time.Time) bool {
	return IsDueForReview(nextReviewDate, sm.now())
}

// CalculateNextReview is the SM-2 state transition.
//
// Quality is clamped into [0,5]. A non-positive prior ease factor means
// "absent" and is replaced by DefaultEaseFactor; a positive ease below the
// floor is used as given and the result is still clamped to the floor.
// Negative intervals and counts are treated as 0. Nothing is rejected.
func CalculateNextReview(quality QualityResponse, prior State, now time.Time) State {
	q := float64(ClampQuality(quality))

	priorEase := prior.EaseFactor
	if priorEase <= 0 {
		priorEase = DefaultEaseFactor
	}
	priorInterval := max(prior.Interval, 0)
	repetitions := max(prior.ConsecutiveCorrect, 0)

	ef := float64(priorEase) / 100
	ef += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	if ef < minEase {
		ef = minEase
	}

	var interval int
	if q < float64(PassThreshold) {
		interval = 0
		repetitions = 0
	} else {
		switch repetitions {
		case 0:
			interval = firstInterval
		case 1:
			interval = secondInterval
		default:
			interval = int(math.Round(float64(priorInterval) * ef))
		}
		repetitions++
	}

	next := ReviewDate(now, interval)
	return State{
		EaseFactor:         int(math.Round(ef * 100)),
		Interval:           interval,
		ConsecutiveCorrect: repetitions,
		NextReviewDate:     &next,
		IsMastered:         IsMastered(repetitions, interval),
	}
}

// IsMastered is the mastery rule: enough unbroken correct answers and a
// long enough interval, both at once.
func IsMastered(consecutiveCorrect, interval int) bool {
	return consecutiveCorrect >= MasteryRepetitions && interval >= MasteryIntervalDays
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ReviewDate returns midnight of the day interval days after today.
func ReviewDate(today time.Time, interval int) time.Time {
	y, m, d := today.Date()
	return time.Date(y, m, d+interval, 0, 0, 0, 0, today.Location())
}

// IsDueForReview reports whether a question is due on now's calendar day.
// A nil date means the question was never reviewed and is always due.
func IsDueForReview(nextReviewDate *time.Time, now time.Time) bool {
	if nextReviewDate == nil {
		return true
	}
	next := StartOfDay(nextReviewDate.In(now.Location()))
	return !next.After(StartOfDay(now))
}
