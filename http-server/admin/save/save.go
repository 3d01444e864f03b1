package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/request"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/go-chi/render"
)

type TechnicianCreator interface {
	CreateTechnicianAdmin(ctx context.Context, t storage.Technician) (int64, error)
}

type Req struct {
	Name     string `json:"name" validate:"required,max=255"`
	IsActive *bool  `json:"is_active"`
}

type Resp struct {
	ID int64 `json:"id"`
}

// SaveTechnicianAdmin adds a technician. New technicians are active unless
// the body says otherwise.
func SaveTechnicianAdmin(log *slog.Logger, creator TechnicianCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.SaveTechnicianAdmin"

		var req Req
		if err := request.DecodeJSON(r, &req); err != nil {
			request.Fail(log, w, op, err)
			return
		}

		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id, err := creator.CreateTechnicianAdmin(ctx, storage.Technician{Name: req.Name, IsActive: active})
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		log.Info("technician created", slog.String("op", op), slog.Int64("id", id))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Resp{ID: id})
	}
}
