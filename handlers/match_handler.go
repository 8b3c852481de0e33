package handlers

import (
	"net/http"

	"github.com/inkzone/bracket-engine/models"
	"github.com/inkzone/bracket-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Start(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type reportResultRequest struct {
	Games []models.GameResult `json:"games"`
}

func (h *MatchHandler) ReportResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req reportResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.matchService.ReportResult(r.Context(), matchID, req.Games)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": outcome.Match, "updated": outcome.Updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type reportForfeitRequest struct {
	Side models.Side `json:"side"`
}

func (h *MatchHandler) ReportForfeit(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req reportForfeitRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.matchService.ReportForfeit(r.Context(), matchID, req.Side)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": outcome.Match, "updated": outcome.Updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UndoResult removes the most recent game of the match, reopening it when the
// removed game was decisive.
func (h *MatchHandler) UndoResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.matchService.UndoResult(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": outcome.Match, "updated": outcome.Updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
