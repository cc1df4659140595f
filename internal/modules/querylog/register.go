// Package querylog keeps an optional sqlite record of served queries.
package querylog

import (
	"database/sql"
	"net/http"

	"ghcnd-server/internal/modules/querylog/controller"
	"ghcnd-server/internal/modules/querylog/repository"
)

// RegisterFeature mounts the query log routes and returns the recorder the
// weather handlers write to. db may be nil when the log is disabled.
func RegisterFeature(mux *http.ServeMux, db *sql.DB) *Recorder {
	queryLogRepository := repository.NewRepository(db)
	queryLogController := controller.NewQueryLogController(queryLogRepository)
	queryLogController.RegisterRoutes(mux)
	return NewRecorder(queryLogRepository)
}
