package model

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
)

// UserAnswer records one submission against a session question
type UserAnswer struct {
	QuestionID string    `json:"questionId" bson:"questionId"`
	Answer     string    `json:"answer" bson:"answer"`
	Correct    bool      `json:"correct" bson:"correct"`
	AnsweredAt time.Time `json:"answeredAt" bson:"answeredAt"`
}

// QuizSession is the server-authoritative session record. Questions here carry
// correct answers; use ClientView before returning a session to the caller.
type QuizSession struct {
	ID         string        `json:"id" bson:"_id,omitempty"`
	UserID     string        `json:"userId" bson:"userId"`
	Topic      string        `json:"topic" bson:"topic"`
	Difficulty Difficulty    `json:"difficulty" bson:"difficulty"`
	Status     SessionStatus `json:"status" bson:"status"`
	Questions  []Question    `json:"questions" bson:"questions"`
	Answers    []UserAnswer  `json:"answers" bson:"answers"`
	Score      float64       `json:"score" bson:"score"`
	StartTime  time.Time     `json:"startTime" bson:"startTime"`
	EndTime    *time.Time    `json:"endTime,omitempty" bson:"endTime,omitempty"`
}

// AnswerFor returns the recorded answer for a question, or nil
func (s *QuizSession) AnswerFor(questionID string) *UserAnswer {
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			return &s.Answers[i]
		}
	}
	return nil
}

// QuestionByID returns the authoritative question, or nil
func (s *QuizSession) QuestionByID(questionID string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == questionID {
			return &s.Questions[i]
		}
	}
	return nil
}

// CorrectCount counts correct recorded answers
func (s *QuizSession) CorrectCount() int {
	n := 0
	for _, a := range s.Answers {
		if a.Correct {
			n++
		}
	}
	return n
}

// CalculateScore computes the session score. While in progress the denominator
// is the number of answered questions; once completed it is the full question
// count, so unanswered questions pull the final score down.
func (s *QuizSession) CalculateScore() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	total := len(s.Answers)
	if s.Status == SessionCompleted {
		total = len(s.Questions)
	}
	if total == 0 {
		return 0
	}
	return float64(s.CorrectCount()) / float64(total) * 100
}

// ClientView returns a copy with correct answers hidden. Answers already
// submitted keep their revealed question, and a completed session reveals
// everything.
func (s *QuizSession) ClientView() *QuizSession {
	c := *s
	c.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		if s.Status == SessionCompleted || s.AnswerFor(q.ID) != nil {
			c.Questions[i] = q
			c.Questions[i].Options = append([]string(nil), q.Options...)
			continue
		}
		c.Questions[i] = q.Visible()
	}
	c.Answers = append([]UserAnswer(nil), s.Answers...)
	return &c
}
