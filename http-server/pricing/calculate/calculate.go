package calculate

import (
	"log/slog"
	"net/http"

	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/request"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/pricing"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
)

type PricePreviewer interface {
	Preview(items []storage.LineItem, terms storage.TrayTerms) pricing.Result
}

type Item struct {
	Kind             storage.ItemKind     `json:"kind" validate:"required,oneof=instrument_only service part"`
	InstrumentID     int64                `json:"instrument_id" validate:"gt=0"`
	ServiceID        int64                `json:"service_id" validate:"required_if=Kind service"`
	PartID           int64                `json:"part_id" validate:"required_if=Kind part"`
	Quantity         int                  `json:"quantity" validate:"min=0"`
	UnitPrice        decimal.Decimal      `json:"unit_price"`
	DiscountPct      decimal.Decimal      `json:"discount_pct"`
	Urgent           bool                 `json:"urgent"`
	NonRepairableQty int                  `json:"non_repairable_qty" validate:"min=0"`
	BrandGroups      []storage.BrandGroup `json:"brand_groups"`
}

type Req struct {
	Items []Item            `json:"items" validate:"dive"`
	Terms storage.TrayTerms `json:"terms"`
}

func (it Item) lineItem() storage.LineItem {
	var identity storage.Identity
	switch it.Kind {
	case storage.KindService:
		identity = storage.Service(it.InstrumentID, it.ServiceID)
	case storage.KindPart:
		identity = storage.Part(it.InstrumentID, it.PartID)
	default:
		identity = storage.InstrumentOnly(it.InstrumentID)
	}

	return storage.LineItem{
		Identity:         identity,
		Quantity:         it.Quantity,
		UnitPrice:        it.UnitPrice,
		DiscountPct:      it.DiscountPct,
		Urgent:           it.Urgent,
		NonRepairableQty: it.NonRepairableQty,
		BrandGroups:      it.BrandGroups,
	}
}

// Calculate prices items that are still being edited and not stored yet.
func Calculate(log *slog.Logger, prices PricePreviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.pricing.Calculate"

		var req Req
		if err := request.DecodeJSON(r, &req); err != nil {
			request.Fail(log, w, op, err)
			return
		}

		items := make([]storage.LineItem, 0, len(req.Items))
		for i, it := range req.Items {
			li := it.lineItem()
			li.ID = int64(i + 1)
			items = append(items, li)
		}
		req.Terms.Subscription = storage.ParseSubscription(string(req.Terms.Subscription))

		render.JSON(w, r, prices.Preview(items, req.Terms))
	}
}
