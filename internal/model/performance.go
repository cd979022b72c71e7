package model

import "time"

// PerformanceRecord is the per (user, question) attempt history. It backs the
// selector's already-attempted exclusion and the struggling/excelling views.
type PerformanceRecord struct {
	ID                    string     `json:"id" bson:"_id,omitempty"`
	UserID                string     `json:"userId" bson:"userId"`
	QuestionID            string     `json:"questionId" bson:"questionId"`
	Topic                 string     `json:"topic" bson:"topic"`
	Difficulty            Difficulty `json:"difficulty" bson:"difficulty"`
	TotalAttempts         int        `json:"totalAttempts" bson:"totalAttempts"`
	CorrectAttempts       int        `json:"correctAttempts" bson:"correctAttempts"`
	AverageResponseTimeMs int64      `json:"averageResponseTimeMs" bson:"averageResponseTimeMs"`
	LastAttemptedAt       time.Time  `json:"lastAttemptedAt" bson:"lastAttemptedAt"`
}

// MasteryRecord aggregates attempts per (user, topic, difficulty). Its
// accuracy gates difficulty recommendation and advancement.
type MasteryRecord struct {
	ID                    string     `json:"id" bson:"_id,omitempty"`
	UserID                string     `json:"userId" bson:"userId"`
	Topic                 string     `json:"topic" bson:"topic"`
	Difficulty            Difficulty `json:"difficulty" bson:"difficulty"`
	TotalAttempts         int        `json:"totalAttempts" bson:"totalAttempts"`
	CorrectAttempts       int        `json:"correctAttempts" bson:"correctAttempts"`
	AverageResponseTimeMs int64      `json:"averageResponseTimeMs" bson:"averageResponseTimeMs"`
	LastAttemptedAt       time.Time  `json:"lastAttemptedAt" bson:"lastAttemptedAt"`
}

// blendResponseTime folds one observation into the running average. This is
// the two-point recency-weighted blend the thresholds were tuned against, not
// a true mean; keep the exact formula.
func blendResponseTime(old, observed int64) int64 {
	if old == 0 {
		return observed
	}
	return (old + observed) / 2
}

// RecordAttempt applies one attempt to the per-question record
func (p *PerformanceRecord) RecordAttempt(correct bool, responseTimeMs int64, now time.Time) {
	p.TotalAttempts++
	if correct {
		p.CorrectAttempts++
	}
	p.AverageResponseTimeMs = blendResponseTime(p.AverageResponseTimeMs, responseTimeMs)
	p.LastAttemptedAt = now
}

// AccuracyRate returns percent accuracy, 0 when nothing was attempted
func (p *PerformanceRecord) AccuracyRate() float64 {
	if p.TotalAttempts == 0 {
		return 0
	}
	return float64(p.CorrectAttempts) / float64(p.TotalAttempts) * 100
}

// RecordAttempt applies one attempt to the aggregate record
func (m *MasteryRecord) RecordAttempt(correct bool, responseTimeMs int64, now time.Time) {
	m.TotalAttempts++
	if correct {
		m.CorrectAttempts++
	}
	m.AverageResponseTimeMs = blendResponseTime(m.AverageResponseTimeMs, responseTimeMs)
	m.LastAttemptedAt = now
}

// AccuracyRate returns percent accuracy, 0 when nothing was attempted
func (m *MasteryRecord) AccuracyRate() float64 {
	if m.TotalAttempts == 0 {
		return 0
	}
	return float64(m.CorrectAttempts) / float64(m.TotalAttempts) * 100
}
