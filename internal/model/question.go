package model

// QuestionType defines how an answer is validated
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE" // Exact match against one of the options
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"      // Normalized true/false comparison
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"    // AI-evaluated free text
	QuestionTypeScenarioBased  QuestionType = "SCENARIO_BASED"  // AI-evaluated, longer scenario prompt
)

// Question is an immutable bank entry. The correct answer is stripped from
// client-visible copies until the question is answered or the session ends.
type Question struct {
	ID            string          `json:"id" bson:"_id,omitempty"`
	Topic         string          `json:"topic" bson:"topic"`
	Difficulty    Difficulty      `json:"difficulty" bson:"difficulty"`
	Type          QuestionType    `json:"type" bson:"type"`
	Content       string          `json:"content" bson:"content"`
	Options       []string        `json:"options,omitempty" bson:"options,omitempty"` // MULTIPLE_CHOICE only
	CorrectAnswer string          `json:"correctAnswer,omitempty" bson:"correctAnswer"`
	Explanation   string          `json:"explanation,omitempty" bson:"explanation"`
	SourceFile    string          `json:"sourceFile,omitempty" bson:"sourceFile,omitempty"`
	Feedback      *AnswerFeedback `json:"feedback,omitempty" bson:"-"`
}

// Visible returns a copy safe to send to the client before the answer is revealed.
func (q Question) Visible() Question {
	c := q
	c.CorrectAnswer = ""
	c.Explanation = ""
	c.Feedback = nil
	c.Options = append([]string(nil), q.Options...)
	return c
}

// AnswerFeedback is the evaluation verdict for a free-text answer
type AnswerFeedback struct {
	Correct         bool    `json:"correct" bson:"correct"`
	SimilarityScore float64 `json:"similarityScore" bson:"similarityScore"`
	Feedback        string  `json:"feedback" bson:"feedback"`
	CorrectAnswer   string  `json:"correctAnswer" bson:"correctAnswer"`
	Degraded        bool    `json:"degraded,omitempty" bson:"degraded,omitempty"` // Evaluator fallback was used
}
