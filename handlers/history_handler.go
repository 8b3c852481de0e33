package handlers

import (
	"net/http"

	"github.com/inkzone/bracket-engine/services"
)

type HistoryHandler struct {
	historyService services.HistoryService
}

func NewHistoryHandler(historyService services.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

func (h *HistoryHandler) TeamSets(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sets, err := h.historyService.TeamSets(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sets": sets}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HistoryHandler) TeamWinCounts(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.historyService.TeamWinCounts(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"winrates": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
