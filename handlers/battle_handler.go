package handlers

import (
	"net/http"

	"github.com/battled-crew/battled-system/services"
)

type BattleHandler struct {
	battleService services.BattleService
}

func NewBattleHandler(battleService services.BattleService) *BattleHandler {
	return &BattleHandler{battleService: battleService}
}

func (h *BattleHandler) Get(w http.ResponseWriter, r *http.Request) {
	battleID, err := idParam(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	b, err := h.battleService.GetBattle(r.Context(), battleID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"battle": b}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Queue returns the tournament's remaining battles in running order.
func (h *BattleHandler) Queue(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	queue, err := h.battleService.ListQueue(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"battles": queue}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BattleHandler) Start(w http.ResponseWriter, r *http.Request) {
	battleID, err := idParam(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	b, err := h.battleService.StartBattle(r.Context(), battleID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"battle": b}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BattleHandler) EncodeResult(w http.ResponseWriter, r *http.Request) {
	battleID, err := idParam(r, "battleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var outcome services.EncodeOutcomeInput
	if err := readJSON(w, r, &outcome); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	b, err := h.battleService.EncodeResult(r.Context(), battleID, outcome)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"battle": b}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
