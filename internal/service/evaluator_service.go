package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"interviewprep/internal/config"
	"interviewprep/internal/model"
)

// AnswerEvaluator judges a free-text answer against a question. It never
// fails: implementations degrade to a basic comparison when the model call
// cannot be completed.
type AnswerEvaluator interface {
	EvaluateAnswer(ctx context.Context, q *model.Question, answer string) *model.AnswerFeedback
}

// QuestionGenerator produces one question from a content snippet
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, content, topic string, difficulty model.Difficulty) (*model.Question, error)
}

// EvaluatorService handles question generation and answer evaluation via the
// Gemini API. When no API key is configured, evaluation falls back to string
// comparison and generation reports an error.
type EvaluatorService struct {
	config *config.AIConfig
	client *http.Client
	log    *zap.SugaredLogger
}

// NewEvaluatorService creates a new evaluator service
func NewEvaluatorService(cfg *config.AIConfig, log *zap.SugaredLogger) *EvaluatorService {
	return &EvaluatorService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		log: log,
	}
}

// EvaluateAnswer scores a free-text answer. Any transport, status, or parse
// failure degrades to a case-insensitive comparison against the correct
// answer; the caller always gets a definitive verdict.
func (s *EvaluatorService) EvaluateAnswer(ctx context.Context, q *model.Question, answer string) *model.AnswerFeedback {
	if !s.config.IsEnabled() {
		return s.fallbackEvaluate(q, answer)
	}

	prompt := s.buildEvaluationPrompt(q, answer)
	response, err := s.callModel(ctx, s.config.Models.Eval, prompt)
	if err != nil {
		s.log.Warnw("answer evaluation failed, using basic comparison", "question", q.ID, "error", err)
		return s.fallbackEvaluate(q, answer)
	}

	var feedback model.AnswerFeedback
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &feedback); err != nil {
		s.log.Warnw("unparseable evaluation response, using basic comparison", "question", q.ID, "error", err)
		return s.fallbackEvaluate(q, answer)
	}

	feedback.CorrectAnswer = q.CorrectAnswer
	return &feedback
}

// fallbackEvaluate compares the answer directly against the expected one
func (s *EvaluatorService) fallbackEvaluate(q *model.Question, answer string) *model.AnswerFeedback {
	correct := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectAnswer))
	score := 0.0
	if correct {
		score = 100
	}
	return &model.AnswerFeedback{
		Correct:         correct,
		SimilarityScore: score,
		Feedback:        "Unable to provide detailed feedback. Using basic comparison.",
		CorrectAnswer:   q.CorrectAnswer,
		Degraded:        true,
	}
}

// generatedQuestion is the JSON contract for question generation
type generatedQuestion struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// GenerateQuestion creates one question from a content snippet
func (s *EvaluatorService) GenerateQuestion(ctx context.Context, content, topic string, difficulty model.Difficulty) (*model.Question, error) {
	if !s.config.IsEnabled() {
		return nil, fmt.Errorf("question generation requires an API key")
	}

	prompt := s.buildGenerationPrompt(content, difficulty)
	response, err := s.callModel(ctx, s.config.Models.Generate, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate question: %w", err)
	}

	var gen generatedQuestion
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &gen); err != nil {
		return nil, fmt.Errorf("parse generated question: %w", err)
	}

	qType, err := parseQuestionType(gen.Type)
	if err != nil {
		return nil, err
	}
	if gen.CorrectAnswer == "" {
		return nil, fmt.Errorf("%w: generated question %q", ErrMissingCorrectAnswer, gen.Question)
	}

	return &model.Question{
		ID:            uuid.NewString(),
		Topic:         topic,
		Difficulty:    difficulty,
		Type:          qType,
		Content:       gen.Question,
		Options:       gen.Options,
		CorrectAnswer: gen.CorrectAnswer,
		Explanation:   gen.Explanation,
	}, nil
}

func parseQuestionType(s string) (model.QuestionType, error) {
	switch model.QuestionType(s) {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse,
		model.QuestionTypeShortAnswer, model.QuestionTypeScenarioBased:
		return model.QuestionType(s), nil
	}
	return "", fmt.Errorf("unknown question type: %q", s)
}

func (s *EvaluatorService) buildEvaluationPrompt(q *model.Question, answer string) string {
	return fmt.Sprintf(`You are an expert evaluator for technical interview questions.

Question: %s

Correct Answer: %s

User's Answer: %s

Question's Explanation: %s

Evaluate the user's answer and respond with JSON in this exact shape:
{
  "correct": boolean,
  "similarityScore": number (0-100),
  "feedback": "why the answer was correct or incorrect, and what was missing"
}

Consider technical accuracy, completeness, and depth of understanding.
Be constructive: name the concepts covered correctly and the ones missed.`,
		q.Content, q.CorrectAnswer, answer, q.Explanation)
}

func (s *EvaluatorService) buildGenerationPrompt(content string, difficulty model.Difficulty) string {
	return fmt.Sprintf(`Create a technical interview question based on the following content:

%s

Requirements:
- Difficulty level: %s
- Include a clear question
- Provide multiple choice options (if applicable)
- Include the correct answer
- Add a detailed explanation

Respond with JSON in this exact shape:
{
  "question": "...",
  "type": "MULTIPLE_CHOICE|TRUE_FALSE|SHORT_ANSWER|SCENARIO_BASED",
  "options": ["...", "..."],
  "correctAnswer": "...",
  "explanation": "..."
}`, content, difficulty)
}

// callModel makes a generateContent request and returns the text of the first
// candidate
func (s *EvaluatorService) callModel(ctx context.Context, modelName, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(modelName), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model call failed with status %d", resp.StatusCode)
	}

	var modelResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &modelResp); err != nil {
		return "", err
	}
	if len(modelResp.Candidates) == 0 || len(modelResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return modelResp.Candidates[0].Content.Parts[0].Text, nil
}

var codeFenceRe = regexp.MustCompile("```[a-zA-Z]*")

// stripCodeFences removes markdown fences some models wrap JSON in
func stripCodeFences(s string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(s, ""))
}
