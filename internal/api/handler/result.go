package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/crossword-extravaganza/internal/api/apierr"
	"github.com/mcoot/crossword-extravaganza/internal/api/request"
	"github.com/mcoot/crossword-extravaganza/internal/api/response"
	"github.com/mcoot/crossword-extravaganza/internal/storage"
)

// ResultHandler serves finished match history
type ResultHandler struct {
	storage storage.Storage
}

// NewResultHandler creates a new result handler
func NewResultHandler(store storage.Storage) *ResultHandler {
	return &ResultHandler{storage: store}
}

// List handles GET /api/v1/results
func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := request.ResultQuery(r)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	results, err := h.storage.ListResults(r.Context(), query)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ResultList{Results: results})
}

// Get handles GET /api/v1/results/{id}
func (h *ResultHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.storage.GetResult(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
