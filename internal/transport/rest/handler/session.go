package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"interviewprep/internal/model"
	"interviewprep/internal/service"
)

// SessionHandler handles quiz session endpoints
type SessionHandler struct {
	sessionSvc  *service.QuizSessionService
	momentumSvc *service.MomentumService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.QuizSessionService, momentumSvc *service.MomentumService) *SessionHandler {
	return &SessionHandler{
		sessionSvc:  sessionSvc,
		momentumSvc: momentumSvc,
	}
}

// StartSessionRequest is the request body for starting a session
type StartSessionRequest struct {
	UserID     string `json:"userId"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// SubmitAnswerRequest is the request body for submitting an answer
type SubmitAnswerRequest struct {
	QuestionID     string `json:"questionId"`
	Answer         string `json:"answer"`
	ResponseTimeMs int64  `json:"responseTimeMs,omitempty"`
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Topic == "" {
		writeError(w, http.StatusBadRequest, "userId and topic are required")
		return
	}
	if req.Count <= 0 {
		req.Count = 10
	}

	difficulty := model.DifficultyMedium
	if req.Difficulty != "" {
		d, err := model.ParseDifficulty(req.Difficulty)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid difficulty")
			return
		}
		difficulty = d
	}

	session, err := h.sessionSvc.StartSession(r.Context(), req.UserID, req.Topic, difficulty, req.Count)
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// SubmitAnswer handles POST /v1/sessions/{sessionId}/answers
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	session, err := h.sessionSvc.SubmitAnswer(r.Context(), sessionID, req.QuestionID, req.Answer, req.ResponseTimeMs)
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// End handles POST /v1/sessions/{sessionId}/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.sessionSvc.EndSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Get handles GET /v1/sessions/{sessionId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.sessionSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Next handles GET /v1/sessions/{sessionId}/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	count := 1
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid count")
			return
		}
		count = n
	}

	questions, err := h.sessionSvc.NextQuestions(r.Context(), sessionID, count)
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"questions": questions,
	})
}

// Momentum handles GET /v1/sessions/{sessionId}/momentum
func (h *SessionHandler) Momentum(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	ctx := r.Context()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId":             sessionID,
		"momentumScore":         h.momentumSvc.Score(ctx, sessionID),
		"accuracyRate":          h.momentumSvc.Accuracy(ctx, sessionID),
		"averageResponseTimeMs": h.momentumSvc.AverageResponseTime(ctx, sessionID),
		"inFlow":                h.momentumSvc.IsInFlow(ctx, sessionID),
		"struggling":            h.momentumSvc.IsStruggling(ctx, sessionID),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrTopicNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidAnswer),
		errors.Is(err, service.ErrNotEnoughQuestions):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotInProgress),
		errors.Is(err, service.ErrSessionCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
