package handlers

import (
	"net/http"

	"github.com/battled-crew/battled-system/services"
)

type CategoryHandler struct {
	categoryService services.CategoryService
}

func NewCategoryHandler(categoryService services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateCategoryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TournamentID = tournamentID

	category, err := h.categoryService.CreateCategory(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	categories, err := h.categoryService.ListCategories(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"categories": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	category, err := h.categoryService.GetCategory(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"category": category}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.categoryService.DeleteCategory(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
