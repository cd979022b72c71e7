package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"interviewprep/internal/model"
	"interviewprep/internal/service"
)

// TopicHandler handles topic and question bank endpoints
type TopicHandler struct {
	bankSvc *service.BankService
}

// NewTopicHandler creates a new topic handler
func NewTopicHandler(bankSvc *service.BankService) *TopicHandler {
	return &TopicHandler{bankSvc: bankSvc}
}

// List handles GET /v1/topics
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	topics, err := h.bankSvc.Topics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"topics": topics})
}

// Questions handles GET /v1/topics/{topic}/questions?difficulty=MEDIUM&limit=20.
// Questions are returned without correct answers.
func (h *TopicHandler) Questions(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]

	difficulty, err := model.ParseDifficulty(r.URL.Query().Get("difficulty"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid difficulty")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	questions, err := h.bankSvc.QuestionsFor(r.Context(), topic, difficulty, limit)
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	visible := make([]model.Question, len(questions))
	for i, q := range questions {
		visible[i] = q.Visible()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": visible})
}
