package handlers

import (
	"net/http"
	"strconv"

	"github.com/battled-crew/battled-system/services"
)

type DancerHandler struct {
	dancerService services.DancerService
}

func NewDancerHandler(dancerService services.DancerService) *DancerHandler {
	return &DancerHandler{dancerService: dancerService}
}

func (h *DancerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	d, err := h.dancerService.CreateDancer(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"dancer": d}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DancerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "dancerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	d, err := h.dancerService.GetDancer(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"dancer": d}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DancerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	dancers, err := h.dancerService.ListDancers(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"dancers": dancers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
