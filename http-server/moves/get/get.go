package get

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/request"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type MoveJournal interface {
	MoveBatch(ctx context.Context, batchID string) ([]storage.JournalEntry, error)
}

// GetBatch returns the journal of one applied split or merge.
func GetBatch(log *slog.Logger, journal MoveJournal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.moves.GetBatch"

		batchID := chi.URLParam(r, "batchID")
		if _, err := uuid.Parse(batchID); err != nil {
			request.Fail(log, w, op, fmt.Errorf("%w: invalid batch id %q", request.ErrBadRequest, batchID))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := journal.MoveBatch(ctx, batchID)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}
		if len(entries) == 0 {
			http.Error(w, "batch not found", http.StatusNotFound)
			return
		}

		render.JSON(w, r, entries)
	}
}
