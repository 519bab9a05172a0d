package handlers

import (
	"net/http"

	"github.com/battled-crew/battled-system/services"
)

type PerformerHandler struct {
	registrationService services.RegistrationService
}

func NewPerformerHandler(registrationService services.RegistrationService) *PerformerHandler {
	return &PerformerHandler{registrationService: registrationService}
}

// Register godoc
// @Summary Register a dancer or duo into a category
// @Tags performers
// @Accept json
// @Produce json
// @Success 201 {object} models.Performer
// @Router /tournaments/{tournamentID}/categories/{categoryID}/performers [post]
func (h *PerformerHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	categoryID, err := idParam(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterPerformerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TournamentID = tournamentID
	input.CategoryID = categoryID

	p, err := h.registrationService.RegisterPerformer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"performer": p}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PerformerHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := idParam(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	performers, err := h.registrationService.ListPerformers(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"performers": performers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PerformerHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	performerID, err := idParam(r, "performerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.registrationService.UnregisterPerformer(r.Context(), performerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
