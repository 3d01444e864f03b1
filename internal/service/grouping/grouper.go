package grouping

import (
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/pricing"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/shopspring/decimal"
)

// Group collapses line items sharing an identity into display rows, in
// first-occurrence order. The input is not modified.
func Group(items []storage.LineItem) []storage.DisplayRow {
	order := make([]string, 0, len(items))
	buckets := make(map[string][]storage.LineItem, len(items))

	for _, item := range items {
		key := item.Identity.Key()
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], item)
	}

	rows := make([]storage.DisplayRow, 0, len(order))
	for _, key := range order {
		group := buckets[key]
		if len(group) == 1 {
			rows = append(rows, single(key, group[0]))
			continue
		}
		rows = append(rows, merge(key, group))
	}

	return rows
}

// FanOut returns the line item ids behind the row with the given key, so an
// edit or delete issued against a row reaches every constituent.
func FanOut(rows []storage.DisplayRow, key string) ([]int64, bool) {
	for _, row := range rows {
		if row.Key == key {
			ids := make([]int64, len(row.SourceIDs))
			copy(ids, row.SourceIDs)
			return ids, true
		}
	}
	return nil, false
}

func single(key string, item storage.LineItem) storage.DisplayRow {
	base, net := amounts(item)
	return storage.DisplayRow{
		Key:              key,
		Identity:         item.Identity,
		Quantity:         item.Quantity,
		UnitPrice:        item.UnitPrice,
		DiscountPct:      item.DiscountPct,
		LineBase:         base,
		LineNet:          net,
		Urgent:           item.Urgent,
		NonRepairableQty: item.NonRepairableQty,
		BrandGroups:      copyGroups(normalizedGroups(item)),
		SourceIDs:        []int64{item.ID},
	}
}

func merge(key string, group []storage.LineItem) storage.DisplayRow {
	first := group[0]
	row := storage.DisplayRow{
		Key:         key,
		Identity:    first.Identity,
		UnitPrice:   first.UnitPrice,
		DiscountPct: first.DiscountPct,
		LineBase:    decimal.Zero,
		LineNet:     decimal.Zero,
		SourceIDs:   make([]int64, 0, len(group)),
	}

	brands := newBrandUnion()
	for _, item := range group {
		base, net := amounts(item)
		row.LineBase = row.LineBase.Add(base)
		row.LineNet = row.LineNet.Add(net)
		if !item.UnitPrice.Equal(first.UnitPrice) || !item.DiscountPct.Equal(first.DiscountPct) {
			row.MixedPrices = true
		}

		row.Quantity += item.Quantity
		row.NonRepairableQty += item.NonRepairableQty
		row.Urgent = row.Urgent || item.Urgent
		row.SourceIDs = append(row.SourceIDs, item.ID)

		for _, g := range normalizedGroups(item) {
			brands.add(g)
		}
	}
	row.BrandGroups = brands.groups()

	return row
}

// amounts is what the item adds to the subtotal and what is left after its own
// discount. Instrument-only items are never billed.
func amounts(item storage.LineItem) (decimal.Decimal, decimal.Decimal) {
	if item.Identity.IsInstrumentOnly() {
		return decimal.Zero, decimal.Zero
	}
	return pricing.LineBase(item), pricing.LineNet(item)
}

// normalizedGroups turns the single brand/serial fields of older records into
// a one-entry group so they merge like everything else.
func normalizedGroups(item storage.LineItem) []storage.BrandGroup {
	if len(item.BrandGroups) > 0 || (item.LegacyBrand == "" && item.LegacySerial == "") {
		return item.BrandGroups
	}

	g := storage.BrandGroup{Brand: item.LegacyBrand}
	if item.LegacySerial != "" {
		g.Serials = []storage.Serial{{Value: item.LegacySerial}}
	}
	return []storage.BrandGroup{g}
}

type brandUnion struct {
	order  []string
	byName map[string]*storage.BrandGroup
}

func newBrandUnion() *brandUnion {
	return &brandUnion{byName: make(map[string]*storage.BrandGroup)}
}

func (u *brandUnion) add(g storage.BrandGroup) {
	existing, ok := u.byName[g.Brand]
	if !ok {
		existing = &storage.BrandGroup{Brand: g.Brand}
		u.byName[g.Brand] = existing
		u.order = append(u.order, g.Brand)
	}
	existing.Serials = append(existing.Serials, g.Serials...)
	existing.Warranty = existing.Warranty || g.Warranty
}

func (u *brandUnion) groups() []storage.BrandGroup {
	if len(u.order) == 0 {
		return nil
	}
	out := make([]storage.BrandGroup, 0, len(u.order))
	for _, name := range u.order {
		out = append(out, *u.byName[name])
	}
	return out
}

func copyGroups(groups []storage.BrandGroup) []storage.BrandGroup {
	if groups == nil {
		return nil
	}
	out := make([]storage.BrandGroup, len(groups))
	for i, g := range groups {
		out[i] = storage.BrandGroup{
			Brand:    g.Brand,
			Serials:  append([]storage.Serial(nil), g.Serials...),
			Warranty: g.Warranty,
		}
	}
	return out
}
