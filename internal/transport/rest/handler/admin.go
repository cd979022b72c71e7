package handler

import (
	"encoding/json"
	"net/http"

	"interviewprep/internal/scheduler"
	"interviewprep/internal/service"
)

// AdminHandler handles maintenance endpoints: question bank regeneration and
// forced learning cycle resets.
type AdminHandler struct {
	bankSvc *service.BankService
	sched   *scheduler.Scheduler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(bankSvc *service.BankService, sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{bankSvc: bankSvc, sched: sched}
}

// RegenerateRequest is the request body for regenerating a topic's bank
type RegenerateRequest struct {
	Topic               string `json:"topic"`
	PerDifficultyTarget int    `json:"perDifficultyTarget"`
}

// Regenerate handles POST /v1/admin/questions/regenerate
func (h *AdminHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	if req.PerDifficultyTarget <= 0 {
		req.PerDifficultyTarget = 5
	}

	added, err := h.bankSvc.Regenerate(r.Context(), req.Topic, req.PerDifficultyTarget)
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"added": added})
}

// ResetCycles handles POST /v1/admin/cycles/reset
func (h *AdminHandler) ResetCycles(w http.ResponseWriter, r *http.Request) {
	reset, err := h.sched.RunManualReset(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reset": reset})
}
