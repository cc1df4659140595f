package httpapi

import (
	"database/sql"
	"net/http"

	"ghcnd-server/internal/utils"
)

// NewMux returns the router with the health check mounted. db is the query
// log database and may be nil. Unmatched paths get a JSON 404 so every API
// error shares one body shape.
func NewMux(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})
	return mux
}
