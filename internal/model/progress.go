package model

import "time"

// TopicProgress is the per (user, topic) learning-cycle aggregate. A progress
// record is deactivated after the configured inactivity window and a fresh one
// takes its place.
type TopicProgress struct {
	ID                 string     `json:"id" bson:"_id,omitempty"`
	UserID             string     `json:"userId" bson:"userId"`
	Topic              string     `json:"topic" bson:"topic"`
	Active             bool       `json:"active" bson:"active"`
	OverallScore       float64    `json:"overallScore" bson:"overallScore"`
	QuestionsAttempted int        `json:"questionsAttempted" bson:"questionsAttempted"`
	QuestionsCorrect   int        `json:"questionsCorrect" bson:"questionsCorrect"`
	StartDate          time.Time  `json:"startDate" bson:"startDate"`
	LastAttemptDate    *time.Time `json:"lastAttemptDate,omitempty" bson:"lastAttemptDate,omitempty"`
}

// RecordAttempt applies one answered question to the aggregate
func (p *TopicProgress) RecordAttempt(correct bool, now time.Time) {
	p.QuestionsAttempted++
	if correct {
		p.QuestionsCorrect++
	}
	p.OverallScore = float64(p.QuestionsCorrect) / float64(p.QuestionsAttempted) * 100
	p.LastAttemptDate = &now
}
