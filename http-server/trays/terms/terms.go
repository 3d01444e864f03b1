package terms

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/request"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/trays"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
)

type TermsUpdater interface {
	UpdateTerms(ctx context.Context, trayID int64, terms storage.TrayTerms) (trays.Quote, error)
}

type Req struct {
	GlobalDiscountPct decimal.Decimal `json:"global_discount_pct"`
	UrgentAll         bool            `json:"urgent_all"`
	Subscription      string          `json:"subscription" validate:"omitempty,oneof=none services parts both"`
}

// UpdateTerms stores the tray-level discount, urgency and subscription and
// answers with the repriced quote.
func UpdateTerms(log *slog.Logger, updater TermsUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.trays.UpdateTerms"

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

		quote, err := updater.UpdateTerms(ctx, trayID, storage.TrayTerms{
			GlobalDiscountPct: req.GlobalDiscountPct,
			UrgentAll:         req.UrgentAll,
			Subscription:      storage.ParseSubscription(req.Subscription),
		})
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		log.Info("tray terms updated", slog.String("op", op), slog.Int64("tray_id", trayID))
		render.JSON(w, r, quote)
	}
}
