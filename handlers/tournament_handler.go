package handlers

import (
	"net/http"
	"time"

	"github.com/inkzone/bracket-engine/middleware"
	"github.com/inkzone/bracket-engine/models"
	"github.com/inkzone/bracket-engine/services"
)

const maxLogoBytes = 5 << 20 // 5MB

type TournamentHandler struct {
	tournamentService  services.TournamentService
	participantService services.ParticipantService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	participantService services.ParticipantService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService:  tournamentService,
		participantService: participantService,
	}
}

type createTournamentRequest struct {
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var req createTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament := &models.Tournament{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
	}
	if err := h.tournamentService.Create(r.Context(), userID, tournament); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateStatusRequest struct {
	Status models.TournamentStatus `json:"status"`
}

func (h *TournamentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.UpdateStatus(r.Context(), userID, id, req.Status); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": req.Status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadLogo accepts a multipart form with a "logo" file part and stores it
// through the configured object storage.
func (h *TournamentHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes)
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	tournament, err := h.tournamentService.UploadLogo(r.Context(), userID, id, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) RegisterParticipant(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.Register(r.Context(), userID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.participantService.ListByTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
