package httpapi

import (
	"net/http"
	"time"

	"ghcnd-server/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestID(requestLogger(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
