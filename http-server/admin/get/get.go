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

type AdminTechniciansProvider interface {
	GetAllTechniciansAdmin(ctx context.Context) ([]storage.Technician, error)
}

// GetAllTechniciansAdmin lists the whole roster, inactive technicians included.
func GetAllTechniciansAdmin(log *slog.Logger, techs AdminTechniciansProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetAllTechniciansAdmin"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := techs.GetAllTechniciansAdmin(ctx)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		render.JSON(w, r, list)
	}
}
