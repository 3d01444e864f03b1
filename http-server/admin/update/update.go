package update

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/request"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
)

type UpdateTechniciansProvider interface {
	UpdateTechniciansAdmin(ctx context.Context, techs []storage.Technician) error
}

type Technician struct {
	ID       int64  `json:"id" validate:"gt=0"`
	Name     string `json:"name" validate:"required,max=255"`
	IsActive bool   `json:"is_active"`
}

func UpdateTechniciansAdmin(log *slog.Logger, update UpdateTechniciansProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateTechniciansAdmin"

		var body []Technician
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			request.Fail(log, w, op, fmt.Errorf("%w: invalid JSON", request.ErrBadRequest))
			return
		}
		if err := request.ValidateSlice(body); err != nil {
			request.Fail(log, w, op, err)
			return
		}

		techs := make([]storage.Technician, 0, len(body))
		for _, t := range body {
			techs = append(techs, storage.Technician{ID: t.ID, Name: t.Name, IsActive: t.IsActive})
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := update.UpdateTechniciansAdmin(ctx, techs); err != nil {
			request.Fail(log, w, op, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
