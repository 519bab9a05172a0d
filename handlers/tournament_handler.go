package handlers

import (
	"net/http"
	"strconv"

	"github.com/battled-crew/battled-system/models"
	"github.com/battled-crew/battled-system/repositories"
	"github.com/battled-crew/battled-system/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	phaseService      services.PhaseService
}

func NewTournamentHandler(tournamentService services.TournamentService, phaseService services.PhaseService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		phaseService:      phaseService,
	}
}

// Create godoc
// @Summary Create a tournament
// @Tags tournaments
// @Accept json
// @Produce json
// @Success 201 {object} models.Tournament
// @Router /tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.tournamentService.CreateTournament(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTournamentsFilter{Limit: 50}

	if v := r.URL.Query().Get("status"); v != "" {
		status := models.TournamentStatus(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("phase"); v != "" {
		phase := models.TournamentPhase(v)
		filter.Phase = &phase
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get returns the tournament with its full category, performer, pool and
// battle trees attached.
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.phaseService.GetFullTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.tournamentService.RenameTournament(r.Context(), id, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.DeleteTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Advance moves the tournament to its next phase. On a validation failure
// the response carries the errors and warnings instead of a new phase.
func (h *TournamentHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.phaseService.Advance(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	if err := writeJSON(w, status, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PreviewAdvance runs the advance validation without committing anything.
func (h *TournamentHandler) PreviewAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	validation, err := h.phaseService.PreviewAdvance(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"validation": validation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.tournamentService.Standings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadPoster accepts a multipart form with a "poster" file field.
func (h *TournamentHandler) UploadPoster(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, header, err := r.FormFile("poster")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	t, err := h.tournamentService.UploadPoster(r.Context(), id, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
