package service

import "errors"

// Error taxonomy for the quiz core. Handlers map these to HTTP statuses with
// errors.Is; services wrap them with fmt.Errorf("%w: ...") to add context.
var (
	// ErrSessionNotFound: the session id does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrQuestionNotFound: the question id is not part of the session
	ErrQuestionNotFound = errors.New("question not found")

	// ErrTopicNotFound: no content or bank entries exist for the topic
	ErrTopicNotFound = errors.New("topic not found")

	// ErrSessionNotInProgress: mutation attempted on a completed session
	ErrSessionNotInProgress = errors.New("session is not in progress")

	// ErrSessionCompleted: the session was already ended
	ErrSessionCompleted = errors.New("session is already completed")

	// ErrInvalidAnswer: the answer is malformed for the question type
	// (unknown option, non true/false value)
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrMissingCorrectAnswer: a bank question has no correct answer. This is
	// a data-integrity fault; retrying with different input cannot fix it.
	ErrMissingCorrectAnswer = errors.New("question has no correct answer")

	// ErrNotEnoughQuestions: the bank could not satisfy the requested count
	ErrNotEnoughQuestions = errors.New("not enough questions available")
)
