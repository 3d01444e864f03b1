// Package pricing turns the line items of one tray into a billable total.
//
// The steps run in a fixed order: per-item discounts, then the tray discount
// on what is left, then the urgency markup on the discounted subtotal, then the
// subscription rebate. Reordering them changes the money.
package pricing

import (
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/shopspring/decimal"
)

var (
	zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

type Rates struct {
	UrgentMarkupPct         decimal.Decimal
	ServicesSubscriptionPct decimal.Decimal
	PartsSubscriptionPct    decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		UrgentMarkupPct:         decimal.NewFromInt(30),
		ServicesSubscriptionPct: decimal.NewFromInt(10),
		PartsSubscriptionPct:    decimal.NewFromInt(5),
	}
}

type Result struct {
	Subtotal                   decimal.Decimal `json:"subtotal"`
	ItemsDiscountAmount        decimal.Decimal `json:"items_discount_amount"`
	GlobalDiscountAmount       decimal.Decimal `json:"global_discount_amount"`
	TotalDiscount              decimal.Decimal `json:"total_discount"`
	UrgentAmount               decimal.Decimal `json:"urgent_amount"`
	SubscriptionDiscountAmount decimal.Decimal `json:"subscription_discount_amount"`
	Total                      decimal.Decimal `json:"total"`
}

// Rounded returns the result rounded to cents. Only the presentation layer
// calls it; Calculate itself never rounds.
func (r Result) Rounded() Result {
	return Result{
		Subtotal:                   r.Subtotal.Round(2),
		ItemsDiscountAmount:        r.ItemsDiscountAmount.Round(2),
		GlobalDiscountAmount:       r.GlobalDiscountAmount.Round(2),
		TotalDiscount:              r.TotalDiscount.Round(2),
		UrgentAmount:               r.UrgentAmount.Round(2),
		SubscriptionDiscountAmount: r.SubscriptionDiscountAmount.Round(2),
		Total:                      r.Total.Round(2),
	}
}

// Calculate prices the items of one tray. It never fails: out of range
// percentages and negative prices are clamped.
func Calculate(items []storage.LineItem, terms storage.TrayTerms, rates Rates) Result {
	var (
		subtotal      = zero
		itemsDiscount = zero
		servicesValue = zero
		partsValue    = zero
		anyUrgent     = terms.UrgentAll
	)

	for _, item := range items {
		if item.Urgent {
			anyUrgent = true
		}
		if item.Identity.IsInstrumentOnly() {
			continue
		}

		base := LineBase(item)
		discountPct := ClampPct(item.DiscountPct)
		subtotal = subtotal.Add(base)
		itemsDiscount = itemsDiscount.Add(base.Mul(discountPct).Shift(-2))

		net := LineNet(item)
		switch item.Identity.Kind {
		case storage.KindService:
			servicesValue = servicesValue.Add(net)
		case storage.KindPart:
			partsValue = partsValue.Add(net)
		}
	}

	globalPct := ClampPct(terms.GlobalDiscountPct)
	afterItems := subtotal.Sub(itemsDiscount)
	globalDiscount := afterItems.Mul(globalPct).Shift(-2)
	totalDiscount := itemsDiscount.Add(globalDiscount)
	afterAll := subtotal.Sub(totalDiscount)

	urgent := zero
	if anyUrgent {
		urgent = afterAll.Mul(ClampPct(rates.UrgentMarkupPct)).Shift(-2)
	}

	keep := hundred.Sub(globalPct).Shift(-2)
	subscription := zero
	if terms.Subscription.CoversServices() {
		subscription = subscription.Add(servicesValue.Mul(keep).Mul(ClampPct(rates.ServicesSubscriptionPct)).Shift(-2))
	}
	if terms.Subscription.CoversParts() {
		subscription = subscription.Add(partsValue.Mul(keep).Mul(ClampPct(rates.PartsSubscriptionPct)).Shift(-2))
	}

	return Result{
		Subtotal:                   subtotal,
		ItemsDiscountAmount:        itemsDiscount,
		GlobalDiscountAmount:       globalDiscount,
		TotalDiscount:              totalDiscount,
		UrgentAmount:               urgent,
		SubscriptionDiscountAmount: subscription,
		Total:                      subtotal.Sub(totalDiscount).Add(urgent).Sub(subscription),
	}
}

// BillableQty is the quantity that is actually repaired and billed.
func BillableQty(item storage.LineItem) int {
	qty := item.Quantity - item.NonRepairableQty
	if qty < 0 {
		return 0
	}
	return qty
}

// LineBase is billable quantity times unit price, before any discount.
func LineBase(item storage.LineItem) decimal.Decimal {
	price := item.UnitPrice
	if price.IsNegative() {
		price = zero
	}
	return price.Mul(decimal.NewFromInt(int64(BillableQty(item))))
}

// LineNet is LineBase after the item's own discount.
func LineNet(item storage.LineItem) decimal.Decimal {
	return LineBase(item).Mul(hundred.Sub(ClampPct(item.DiscountPct))).Shift(-2)
}

func ClampPct(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
