package handlers

import (
	"net/http"

	"github.com/inkzone/bracket-engine/brackets"
	"github.com/inkzone/bracket-engine/middleware"
	"github.com/inkzone/bracket-engine/models"
	"github.com/inkzone/bracket-engine/services"
)

type StageHandler struct {
	stageService services.StageService
}

func NewStageHandler(stageService services.StageService) *StageHandler {
	return &StageHandler{stageService: stageService}
}

func (h *StageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateStageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tree, err := h.stageService.Generate(r.Context(), userID, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, treeResponse(tree), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StageHandler) Get(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tree, err := h.stageService.GetTree(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, treeResponse(tree), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type pairSwissRequest struct {
	GroupNumber int `json:"group_number"`
}

func (h *StageHandler) PairSwissRound(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	req := pairSwissRequest{GroupNumber: 1}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	matches, err := h.stageService.PairSwissRound(r.Context(), userID, stageID, req.GroupNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stageService.Delete(r.Context(), userID, stageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func treeResponse(tree *brackets.StageTree) jsonResponse {
	rounds := make([]roundView, 0, len(tree.Rounds))
	for _, round := range tree.Rounds {
		view := roundView{Round: round}
		if name, err := brackets.RoundNameInTree(tree, round.ID); err == nil {
			view.Name = name
		}
		rounds = append(rounds, view)
	}
	return jsonResponse{
		"stage":   tree.Stage,
		"groups":  tree.Groups,
		"rounds":  rounds,
		"matches": tree.Matches,
	}
}

// roundView decorates a round with its derived display name.
type roundView struct {
	*models.Round
	Name string `json:"name"`
}
