package split

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/request"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/planner"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/trays"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/go-chi/render"
)

type TraySplitter interface {
	PlanSplit(ctx context.Context, trayID int64, req planner.SplitRequest) (planner.SplitPlan, error)
	ApplySplit(ctx context.Context, trayID int64, req planner.SplitRequest) (trays.Applied, error)
}

type Req struct {
	Destinations []storage.DestinationKey                  `json:"destinations" validate:"min=2,max=3,dive,required"`
	Targets      map[int64]map[storage.DestinationKey]int `json:"targets"`
}

func (r Req) split() planner.SplitRequest {
	return planner.SplitRequest{Destinations: r.Destinations, Targets: r.Targets}
}

// Plan previews a split without touching the tray.
func Plan(log *slog.Logger, splitter TraySplitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.trays.split.Plan"

		trayID, req, ok := decode(log, w, r, op)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		plan, err := splitter.PlanSplit(ctx, trayID, req.split())
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		render.JSON(w, r, plan)
	}
}

func Apply(log *slog.Logger, splitter TraySplitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.trays.split.Apply"

		trayID, req, ok := decode(log, w, r, op)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		applied, err := splitter.ApplySplit(ctx, trayID, req.split())
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		log.Info("tray split",
			slog.String("op", op),
			slog.Int64("tray_id", trayID),
			slog.String("batch_id", applied.BatchID),
			slog.Int("moves", len(applied.Moves)),
		)
		render.JSON(w, r, applied)
	}
}

func decode(log *slog.Logger, w http.ResponseWriter, r *http.Request, op string) (int64, Req, bool) {
	trayID, err := request.TrayID(r)
	if err != nil {
		request.Fail(log, w, op, err)
		return 0, Req{}, false
	}

	var req Req
	if err := request.DecodeJSON(r, &req); err != nil {
		request.Fail(log, w, op, err)
		return 0, Req{}, false
	}

	return trayID, req, true
}
