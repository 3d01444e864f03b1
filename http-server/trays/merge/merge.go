package merge

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

type TrayMerger interface {
	PlanMerge(ctx context.Context, trayID int64, req planner.MergeRequest) (planner.MergePlan, error)
	ApplyMerge(ctx context.Context, trayID int64, req planner.MergeRequest) (trays.Applied, error)
}

type Selection struct {
	ItemID   int64 `json:"item_id" validate:"gt=0"`
	Quantity int   `json:"quantity" validate:"min=0"`
}

type Req struct {
	Target     storage.DestinationKey `json:"target" validate:"required"`
	Selections []Selection            `json:"selections" validate:"required,min=1,dive"`
}

func (r Req) merge() planner.MergeRequest {
	sel := make([]planner.Selection, 0, len(r.Selections))
	for _, s := range r.Selections {
		sel = append(sel, planner.Selection{ItemID: s.ItemID, Quantity: s.Quantity})
	}
	return planner.MergeRequest{Target: r.Target, Selections: sel}
}

func Plan(log *slog.Logger, merger TrayMerger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.trays.merge.Plan"

		trayID, err := request.TrayID(r)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		var req Req
		if err := request.DecodeJSON(r, &req); err != nil {
			request.Fail(log, w, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		plan, err := merger.PlanMerge(ctx, trayID, req.merge())
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		render.JSON(w, r, plan)
	}
}

func Apply(log *slog.Logger, merger TrayMerger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.trays.merge.Apply"

		trayID, err := request.TrayID(r)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		var req Req
		if err := request.DecodeJSON(r, &req); err != nil {
			request.Fail(log, w, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		applied, err := merger.ApplyMerge(ctx, trayID, req.merge())
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		log.Info("tray items merged",
			slog.String("op", op),
			slog.Int64("tray_id", trayID),
			slog.String("target", string(req.Target)),
			slog.String("batch_id", applied.BatchID),
		)
		render.JSON(w, r, applied)
	}
}
