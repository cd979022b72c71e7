package model

import (
	"math"
	"time"
)

// Spaced repetition tuning. The ease factor never drops below its floor; the
// interval schedule is the SM-2 1-day / 6-day openers followed by the
// multiplicative growth step.
const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// SpacedRepetitionRecord is the per (user, question) review state machine.
// Created lazily on first exposure, updated on every answer, never deleted.
type SpacedRepetitionRecord struct {
	ID                   string    `json:"id" bson:"_id,omitempty"`
	UserID               string    `json:"userId" bson:"userId"`
	QuestionID           string    `json:"questionId" bson:"questionId"`
	RepetitionNumber     int       `json:"repetitionNumber" bson:"repetitionNumber"`
	EaseFactor           float64   `json:"easeFactor" bson:"easeFactor"`
	IntervalDays         int       `json:"intervalDays" bson:"intervalDays"`
	NextReviewDate       time.Time `json:"nextReviewDate" bson:"nextReviewDate"`
	LastReviewDate       time.Time `json:"lastReviewDate,omitempty" bson:"lastReviewDate,omitempty"`
	ConsecutiveCorrect   int       `json:"consecutiveCorrect" bson:"consecutiveCorrect"`
	ConsecutiveIncorrect int       `json:"consecutiveIncorrect" bson:"consecutiveIncorrect"`
	CreatedAt            time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewSpacedRepetitionRecord returns the initial state: due immediately.
func NewSpacedRepetitionRecord(userID, questionID string, now time.Time) *SpacedRepetitionRecord {
	return &SpacedRepetitionRecord{
		UserID:         userID,
		QuestionID:     questionID,
		EaseFactor:     InitialEaseFactor,
		NextReviewDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsDue reports whether the record is due for review at the given time
func (r *SpacedRepetitionRecord) IsDue(now time.Time) bool {
	return !r.NextReviewDate.After(now)
}

// UpdateEaseFactor applies the answer to the ease factor and streak counters.
// Correct answers add 0.1 with no upper clamp; incorrect answers subtract 0.2
// down to the 1.3 floor.
func (r *SpacedRepetitionRecord) UpdateEaseFactor(correct bool) {
	if correct {
		r.EaseFactor += 0.1
		r.ConsecutiveCorrect++
		r.ConsecutiveIncorrect = 0
		return
	}
	r.EaseFactor -= 0.2
	if r.EaseFactor < MinEaseFactor {
		r.EaseFactor = MinEaseFactor
	}
	r.ConsecutiveIncorrect++
	r.ConsecutiveCorrect = 0
}

// AdvanceSchedule moves the record to its next review slot. The repetition
// number always advances, including after a miss: a wrong answer shrinks the
// ease factor but does not restart the 1/6 opener schedule.
func (r *SpacedRepetitionRecord) AdvanceSchedule(now time.Time) {
	r.RepetitionNumber++
	switch r.RepetitionNumber {
	case 1:
		r.IntervalDays = 1
	case 2:
		r.IntervalDays = 6
	default:
		r.IntervalDays = int(math.Round(float64(r.IntervalDays) * r.EaseFactor))
	}
	r.NextReviewDate = now.AddDate(0, 0, r.IntervalDays)
	r.LastReviewDate = now
	r.UpdatedAt = now
}
