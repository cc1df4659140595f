package querylog

import (
	"context"
	"log/slog"
	"time"

	"ghcnd-server/internal/modules/querylog/repository"
	"ghcnd-server/internal/modules/querylog/types"
)

// recordTimeout bounds a single insert so a slow disk cannot hold a response.
const recordTimeout = 2 * time.Second

// Recorder writes query log entries. Failures are logged and never reach the
// caller.
type Recorder struct {
	repository repository.QueryLogRepository
}

func NewRecorder(repository repository.QueryLogRepository) *Recorder {
	return &Recorder{repository: repository}
}

func (r *Recorder) Record(ctx context.Context, e types.Entry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := r.repository.Insert(ctx, e); err != nil {
		slog.Warn("query log insert failed", "kind", e.Kind, "error", err)
	}
}
