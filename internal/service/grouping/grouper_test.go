package grouping

import (
	"testing"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id int64, identity storage.Identity, qty int) storage.LineItem {
	return storage.LineItem{
		ID:          id,
		TrayID:      1,
		Identity:    identity,
		Quantity:    qty,
		UnitPrice:   decimal.NewFromInt(25),
		DiscountPct: decimal.Zero,
	}
}

func TestGroup_ScenarioE_SameIdentityMerges(t *testing.T) {
	items := []storage.LineItem{
		item(1, storage.Service(7, 3), 2),
		item(2, storage.Service(7, 3), 3),
	}

	rows := Group(items)

	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Quantity)
	assert.Equal(t, []int64{1, 2}, rows[0].SourceIDs)
	assert.True(t, rows[0].IsMerged())
}

func TestGroup_KeepsFirstOccurrenceOrder(t *testing.T) {
	items := []storage.LineItem{
		item(1, storage.Part(7, 9), 1),
		item(2, storage.InstrumentOnly(7), 4),
		item(3, storage.Part(7, 9), 1),
		item(4, storage.Service(7, 3), 1),
		item(5, storage.InstrumentOnly(7), 1),
	}

	rows := Group(items)

	require.Len(t, rows, 3)
	assert.Equal(t, storage.Part(7, 9), rows[0].Identity)
	assert.Equal(t, []int64{1, 3}, rows[0].SourceIDs)
	assert.Equal(t, storage.InstrumentOnly(7), rows[1].Identity)
	assert.Equal(t, 5, rows[1].Quantity)
	assert.Equal(t, storage.Service(7, 3), rows[2].Identity)
}

func TestGroup_ServiceAndPartWithSameIDDoNotCollide(t *testing.T) {
	rows := Group([]storage.LineItem{
		item(1, storage.Service(7, 3), 1),
		item(2, storage.Part(7, 3), 1),
		item(3, storage.Service(8, 3), 1),
	})

	assert.Len(t, rows, 3)
}

func TestGroup_SingleItemPassesThrough(t *testing.T) {
	it := item(1, storage.Service(7, 3), 2)
	it.LegacyBrand = "Olympus"
	it.LegacySerial = "SN-1"
	it.NonRepairableQty = 1
	it.Urgent = true

	rows := Group([]storage.LineItem{it})

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, []int64{1}, row.SourceIDs)
	assert.False(t, row.IsMerged())
	assert.Equal(t, 1, row.NonRepairableQty)
	assert.True(t, row.Urgent)
	assert.Equal(t, []storage.BrandGroup{
		{Brand: "Olympus", Serials: []storage.Serial{{Value: "SN-1"}}},
	}, row.BrandGroups)
	assert.True(t, row.LineBase.Equal(decimal.NewFromInt(25)))
}

func TestGroup_UnionsBrandGroups(t *testing.T) {
	a := item(1, storage.InstrumentOnly(7), 1)
	a.BrandGroups = []storage.BrandGroup{
		{Brand: "Olympus", Serials: []storage.Serial{{Value: "A1"}}},
		{Brand: "Storz", Serials: []storage.Serial{{Value: "S1", UnderWarranty: true}}, Warranty: true},
	}
	b := item(2, storage.InstrumentOnly(7), 2)
	b.BrandGroups = []storage.BrandGroup{
		{Brand: "Olympus", Serials: []storage.Serial{{Value: "A2"}}, Warranty: true},
	}
	legacy := item(3, storage.InstrumentOnly(7), 1)
	legacy.LegacyBrand = "Wolf"
	legacy.LegacySerial = "W9"

	rows := Group([]storage.LineItem{a, b, legacy})

	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Quantity)
	assert.Equal(t, []storage.BrandGroup{
		{Brand: "Olympus", Serials: []storage.Serial{{Value: "A1"}, {Value: "A2"}}, Warranty: true},
		{Brand: "Storz", Serials: []storage.Serial{{Value: "S1", UnderWarranty: true}}, Warranty: true},
		{Brand: "Wolf", Serials: []storage.Serial{{Value: "W9"}}},
	}, rows[0].BrandGroups)
}

func TestGroup_IsIdempotentAndPure(t *testing.T) {
	a := item(1, storage.Service(7, 3), 2)
	a.BrandGroups = []storage.BrandGroup{{Brand: "Olympus", Serials: []storage.Serial{{Value: "A1"}}}}
	b := item(2, storage.Service(7, 3), 3)
	b.BrandGroups = []storage.BrandGroup{{Brand: "Olympus", Serials: []storage.Serial{{Value: "A2"}}}}
	items := []storage.LineItem{a, b, item(3, storage.InstrumentOnly(7), 5)}

	first := Group(items)
	second := Group(items)

	assert.Equal(t, first, second)
	assert.Equal(t, []storage.Serial{{Value: "A1"}}, items[0].BrandGroups[0].Serials)
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, Group(nil))
}

func TestFanOut(t *testing.T) {
	rows := Group([]storage.LineItem{
		item(1, storage.Service(7, 3), 2),
		item(2, storage.Service(7, 3), 3),
	})

	ids, ok := FanOut(rows, storage.Service(7, 3).Key())
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2}, ids)

	_, ok = FanOut(rows, "missing")
	assert.False(t, ok)
}

func TestGroup_MixedPricesSumLineAmounts(t *testing.T) {
	a := item(1, storage.Service(7, 3), 2)
	a.UnitPrice = decimal.NewFromInt(50)
	b := item(2, storage.Service(7, 3), 3)
	b.UnitPrice = decimal.NewFromInt(80)
	b.DiscountPct = decimal.NewFromInt(10)
	instrument := item(3, storage.InstrumentOnly(7), 5)

	rows := Group([]storage.LineItem{a, b, instrument})

	require.Len(t, rows, 2)
	row := rows[0]
	assert.True(t, row.MixedPrices)
	assert.True(t, row.UnitPrice.Equal(decimal.NewFromInt(50)))
	assert.True(t, row.LineBase.Equal(decimal.NewFromInt(340)), row.LineBase.String())
	assert.True(t, row.LineNet.Equal(decimal.NewFromInt(316)), row.LineNet.String())

	assert.False(t, rows[1].MixedPrices)
	assert.True(t, rows[1].LineNet.IsZero())
}
