package controller

import (
	"errors"
	"net/http"
	"strconv"

	"ghcnd-server/internal/modules/querylog/repository"
	"ghcnd-server/internal/utils"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

type QueryLogController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type queryLogControllerImpl struct {
	repository repository.QueryLogRepository
}

func NewQueryLogController(repository repository.QueryLogRepository) QueryLogController {
	return &queryLogControllerImpl{repository: repository}
}

func (c *queryLogControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/queries", c.handleRecent)
}

func (c *queryLogControllerImpl) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := c.repository.GetRecent(r.Context(), limit)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func parseLimit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid 'limit' (expected integer)")
	}
	if n <= 0 {
		return 0, errors.New("'limit' must be > 0")
	}
	if n > maxLimit {
		return 0, errors.New("'limit' must be <= 200")
	}
	return n, nil
}
