package model

import "time"

// Momentum thresholds: at or above flow the session steps difficulty up, at or
// below struggling it steps down, anything between is neutral.
const (
	FlowThreshold       = 70.0
	StrugglingThreshold = 30.0
)

// SessionMomentum is the short-horizon signal for one live session. It is
// ephemeral per-session state, not durable user progress.
type SessionMomentum struct {
	SessionID             string    `json:"sessionId"`
	UserID                string    `json:"userId"`
	QuestionsAnswered     int       `json:"questionsAnswered"`
	CorrectAnswers        int       `json:"correctAnswers"`
	AverageResponseTimeMs int64     `json:"averageResponseTimeMs"`
	MomentumScore         float64   `json:"momentumScore"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// AccuracyRate returns percent accuracy for the session so far
func (m *SessionMomentum) AccuracyRate() float64 {
	if m.QuestionsAnswered == 0 {
		return 0
	}
	return float64(m.CorrectAnswers) / float64(m.QuestionsAnswered) * 100
}

// RecordAnswer folds one answer into the counters and recomputes the score
func (m *SessionMomentum) RecordAnswer(correct bool, responseTimeMs int64, now time.Time) {
	m.QuestionsAnswered++
	if correct {
		m.CorrectAnswers++
	}
	m.AverageResponseTimeMs = blendResponseTime(m.AverageResponseTimeMs, responseTimeMs)
	m.UpdatedAt = now
	m.CalculateMomentumScore()
}

// CalculateMomentumScore combines accuracy (70%) with response speed (30%).
// The speed term saturates to zero once the average response time reaches
// 100 seconds.
func (m *SessionMomentum) CalculateMomentumScore() {
	speed := 100 - float64(m.AverageResponseTimeMs)/1000.0
	if speed < 0 {
		speed = 0
	}
	m.MomentumScore = 0.7*m.AccuracyRate() + 0.3*speed
}

// IsInFlow reports whether the session has high momentum
func (m *SessionMomentum) IsInFlow() bool {
	return m.MomentumScore >= FlowThreshold
}

// IsStruggling reports whether the session has low momentum
func (m *SessionMomentum) IsStruggling() bool {
	return m.MomentumScore <= StrugglingThreshold
}
