package pricing

import (
	"testing"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func serviceItem(qty int, price, discount string) storage.LineItem {
	return storage.LineItem{
		ID:          1,
		Identity:    storage.Service(10, 100),
		Quantity:    qty,
		UnitPrice:   dec(price),
		DiscountPct: dec(discount),
	}
}

func partItem(qty int, price, discount string) storage.LineItem {
	return storage.LineItem{
		ID:          2,
		Identity:    storage.Part(10, 200),
		Quantity:    qty,
		UnitPrice:   dec(price),
		DiscountPct: dec(discount),
	}
}

func noTerms() storage.TrayTerms {
	return storage.TrayTerms{GlobalDiscountPct: decimal.Zero, Subscription: storage.SubscriptionNone}
}

func TestCalculate_ScenarioA_PlainService(t *testing.T) {
	res := Calculate([]storage.LineItem{serviceItem(4, "50", "0")}, noTerms(), DefaultRates())

	assertMoney(t, "200", res.Subtotal, "subtotal")
	assertMoney(t, "0", res.TotalDiscount, "totalDiscount")
	assertMoney(t, "0", res.UrgentAmount, "urgentAmount")
	assertMoney(t, "200", res.Total, "total")
}

func TestCalculate_ScenarioB_UrgentTray(t *testing.T) {
	terms := noTerms()
	terms.UrgentAll = true

	res := Calculate([]storage.LineItem{serviceItem(4, "50", "0")}, terms, DefaultRates())

	assertMoney(t, "60", res.UrgentAmount, "urgentAmount")
	assertMoney(t, "260", res.Total, "total")
}

func TestCalculate_ScenarioC_PartsSubscription(t *testing.T) {
	terms := noTerms()
	terms.Subscription = storage.SubscriptionParts

	res := Calculate([]storage.LineItem{partItem(2, "30", "0")}, terms, DefaultRates())

	assertMoney(t, "60", res.Subtotal, "subtotal")
	assertMoney(t, "3", res.SubscriptionDiscountAmount, "subscriptionDiscount")
	assertMoney(t, "57", res.Total, "total")
}

func TestCalculate_DiscountsAreLayered(t *testing.T) {
	terms := noTerms()
	terms.GlobalDiscountPct = dec("10")

	res := Calculate([]storage.LineItem{serviceItem(1, "100", "10")}, terms, DefaultRates())

	assertMoney(t, "100", res.Subtotal, "subtotal")
	assertMoney(t, "10", res.ItemsDiscountAmount, "itemsDiscount")
	// 10% of 90, not of 100
	assertMoney(t, "9", res.GlobalDiscountAmount, "globalDiscount")
	assertMoney(t, "19", res.TotalDiscount, "totalDiscount")
	assertMoney(t, "81", res.Total, "total")
}

func TestCalculate_ItemUrgencyTriggersFlatMarkup(t *testing.T) {
	urgent := serviceItem(1, "100", "0")
	urgent.Urgent = true
	calm := partItem(1, "100", "0")

	res := Calculate([]storage.LineItem{urgent, calm}, noTerms(), DefaultRates())

	// flat rate on the whole discounted subtotal, not per urgent item
	assertMoney(t, "60", res.UrgentAmount, "urgentAmount")
	assertMoney(t, "260", res.Total, "total")
}

func TestCalculate_InstrumentOnlyContributesNothing(t *testing.T) {
	instrument := storage.LineItem{
		ID:        3,
		Identity:  storage.InstrumentOnly(10),
		Quantity:  5,
		UnitPrice: dec("999"),
	}

	res := Calculate([]storage.LineItem{instrument, serviceItem(2, "10", "0")}, noTerms(), DefaultRates())

	assertMoney(t, "20", res.Subtotal, "subtotal")
	assertMoney(t, "20", res.Total, "total")
}

func TestCalculate_NonRepairableQuantityIsNotBilled(t *testing.T) {
	item := serviceItem(5, "10", "0")
	item.NonRepairableQty = 2

	res := Calculate([]storage.LineItem{item}, noTerms(), DefaultRates())
	assertMoney(t, "30", res.Subtotal, "subtotal")

	item.NonRepairableQty = 9
	res = Calculate([]storage.LineItem{item}, noTerms(), DefaultRates())
	assertMoney(t, "0", res.Subtotal, "subtotal")
}

func TestCalculate_ClampsOutOfRangeInput(t *testing.T) {
	tests := []struct {
		name      string
		item      storage.LineItem
		global    string
		wantTotal string
	}{
		{"discount above 100", serviceItem(1, "100", "150"), "0", "0"},
		{"negative discount", serviceItem(1, "100", "-20"), "0", "100"},
		{"negative price", serviceItem(3, "-5", "0"), "0", "0"},
		{"global above 100", serviceItem(1, "100", "0"), "400", "0"},
		{"negative global", serviceItem(1, "100", "0"), "-10", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := noTerms()
			terms.GlobalDiscountPct = dec(tt.global)

			res := Calculate([]storage.LineItem{tt.item}, terms, DefaultRates())

			assertMoney(t, tt.wantTotal, res.Total, "total")
			assert.False(t, res.Total.IsNegative())
		})
	}
}

func TestCalculate_BothSubscriptionsUseGlobalDiscount(t *testing.T) {
	terms := storage.TrayTerms{GlobalDiscountPct: dec("20"), Subscription: storage.SubscriptionBoth}
	items := []storage.LineItem{serviceItem(1, "100", "50"), partItem(2, "100", "0")}

	res := Calculate(items, terms, DefaultRates())

	// services: 50 * 0.8 * 0.10 = 4, parts: 200 * 0.8 * 0.05 = 8
	assertMoney(t, "12", res.SubscriptionDiscountAmount, "subscriptionDiscount")
	assertMoney(t, "300", res.Subtotal, "subtotal")
	assertMoney(t, "50", res.ItemsDiscountAmount, "itemsDiscount")
	assertMoney(t, "50", res.GlobalDiscountAmount, "globalDiscount")
	assertMoney(t, "188", res.Total, "total")
}

func TestCalculate_ServicesSubscriptionIgnoresParts(t *testing.T) {
	terms := noTerms()
	terms.Subscription = storage.SubscriptionServices

	res := Calculate([]storage.LineItem{partItem(1, "100", "0")}, terms, DefaultRates())

	assertMoney(t, "0", res.SubscriptionDiscountAmount, "subscriptionDiscount")
}

func TestCalculate_DiscountNeverRaisesTotal(t *testing.T) {
	for _, sub := range []storage.SubscriptionType{storage.SubscriptionNone, storage.SubscriptionBoth} {
		for _, urgentAll := range []bool{false, true} {
			terms := storage.TrayTerms{GlobalDiscountPct: dec("15"), UrgentAll: urgentAll, Subscription: sub}

			prev := decimal.Zero
			for pct := 0; pct <= 100; pct += 5 {
				items := []storage.LineItem{serviceItem(3, "42.5", "0"), partItem(2, "19.99", "10")}
				items[0].DiscountPct = decimal.NewFromInt(int64(pct))

				total := Calculate(items, terms, DefaultRates()).Total
				if pct > 0 {
					assert.True(t, total.LessThanOrEqual(prev), "discount %d raised total %s -> %s", pct, prev, total)
				}
				prev = total
			}
		}
	}
}

func TestCalculate_UrgencyNeverLowersTotal(t *testing.T) {
	items := []storage.LineItem{serviceItem(3, "42.5", "25"), partItem(2, "19.99", "10")}

	for _, sub := range []storage.SubscriptionType{storage.SubscriptionNone, storage.SubscriptionServices, storage.SubscriptionParts, storage.SubscriptionBoth} {
		terms := storage.TrayTerms{GlobalDiscountPct: dec("5"), Subscription: sub}
		calm := Calculate(items, terms, DefaultRates()).Total

		terms.UrgentAll = true
		urgent := Calculate(items, terms, DefaultRates()).Total

		assert.True(t, urgent.GreaterThanOrEqual(calm), "subscription %s", sub)
	}
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	items := []storage.LineItem{serviceItem(2, "-3", "120")}

	Calculate(items, noTerms(), DefaultRates())

	assertMoney(t, "-3", items[0].UnitPrice, "unitPrice")
	assertMoney(t, "120", items[0].DiscountPct, "discountPct")
}

func TestResult_Rounded(t *testing.T) {
	res := Calculate([]storage.LineItem{serviceItem(1, "10", "33.333")}, noTerms(), DefaultRates())

	rounded := res.Rounded()

	assertMoney(t, "3.3333", res.ItemsDiscountAmount, "itemsDiscount")
	assertMoney(t, "3.33", rounded.ItemsDiscountAmount, "itemsDiscount")
	assertMoney(t, "6.67", rounded.Total, "total")
}

func TestLineNet(t *testing.T) {
	item := serviceItem(3, "20", "25")
	item.NonRepairableQty = 1

	assertMoney(t, "40", LineBase(item), "base")
	assertMoney(t, "30", LineNet(item), "net")
}
