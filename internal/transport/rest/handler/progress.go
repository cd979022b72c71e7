package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"interviewprep/internal/model"
	"interviewprep/internal/service"
)

// ProgressHandler handles mastery, topic progress and spaced review endpoints
type ProgressHandler struct {
	masterySvc    *service.MasteryService
	repetitionSvc *service.SpacedRepetitionService
	progressSvc   *service.ProgressService
	bankSvc       *service.BankService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(
	masterySvc *service.MasteryService,
	repetitionSvc *service.SpacedRepetitionService,
	progressSvc *service.ProgressService,
	bankSvc *service.BankService,
) *ProgressHandler {
	return &ProgressHandler{
		masterySvc:    masterySvc,
		repetitionSvc: repetitionSvc,
		progressSvc:   progressSvc,
		bankSvc:       bankSvc,
	}
}

// Topics handles GET /v1/users/{userId}/progress
func (h *ProgressHandler) Topics(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	progress, err := h.progressSvc.ByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"progress": progress})
}

// Mastery handles GET /v1/users/{userId}/mastery/{topic}
func (h *ProgressHandler) Mastery(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userId"]
	topic := vars["topic"]

	records, err := h.masterySvc.MasteryByTopic(r.Context(), userID, topic)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	recommended, err := h.masterySvc.RecommendedDifficulty(r.Context(), userID, topic)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mastery":               records,
		"recommendedDifficulty": recommended,
	})
}

// DueReviews handles GET /v1/users/{userId}/reviews/due?topic=...&limit=10.
// Returned questions omit correct answers.
func (h *ProgressHandler) DueReviews(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	topic := r.URL.Query().Get("topic")

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.repetitionSvc.DueQuestions(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.QuestionID)
	}
	questions, err := h.bankSvc.QuestionsByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	visible := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if topic != "" && q.Topic != topic {
			continue
		}
		visible = append(visible, q.Visible())
	}

	total, err := h.repetitionSvc.CountDue(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"due":      visible,
		"totalDue": total,
	})
}
