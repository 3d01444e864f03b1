package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/request"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/go-chi/render"
)

type Technicians interface {
	GetActiveTechnicians(ctx context.Context) ([]storage.Technician, error)
}

// GetTechnicians lists the technicians a split or merge can target.
func GetTechnicians(log *slog.Logger, techs Technicians) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.technicians.get.GetTechnicians"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := techs.GetActiveTechnicians(ctx)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}
