package storage

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ItemKind string

const (
	KindInstrumentOnly ItemKind = "instrument_only"
	KindService        ItemKind = "service"
	KindPart           ItemKind = "part"
)

// Identity is what a line item is: a bare instrument, a service on an
// instrument or a part on an instrument. Build it with InstrumentOnly,
// Service or Part so that a service id never travels next to a part id.
type Identity struct {
	Kind         ItemKind `json:"kind"`
	InstrumentID int64    `json:"instrument_id,omitempty"`
	ServiceID    int64    `json:"service_id,omitempty"`
	PartID       int64    `json:"part_id,omitempty"`
}

func InstrumentOnly(instrumentID int64) Identity {
	return Identity{Kind: KindInstrumentOnly, InstrumentID: instrumentID}
}

func Service(instrumentID, serviceID int64) Identity {
	return Identity{Kind: KindService, InstrumentID: instrumentID, ServiceID: serviceID}
}

func Part(instrumentID, partID int64) Identity {
	return Identity{Kind: KindPart, InstrumentID: instrumentID, PartID: partID}
}

// IdentityFromColumns rebuilds an identity from the nullable columns the store
// keeps. A row with a service id is a service, a row with a part id is a part,
// anything else is the bare instrument.
func IdentityFromColumns(instrumentID, serviceID, partID int64) Identity {
	switch {
	case serviceID != 0:
		return Service(instrumentID, serviceID)
	case partID != 0:
		return Part(instrumentID, partID)
	default:
		return InstrumentOnly(instrumentID)
	}
}

// Key is the grouping key: two items with the same key describe the same thing.
func (id Identity) Key() string {
	return fmt.Sprintf("%s:%d:%d:%d", id.Kind, id.InstrumentID, id.ServiceID, id.PartID)
}

func (id Identity) IsInstrumentOnly() bool {
	return id.Kind == KindInstrumentOnly
}

type Serial struct {
	Value         string `json:"value"`
	UnderWarranty bool   `json:"under_warranty"`
}

type BrandGroup struct {
	Brand    string   `json:"brand"`
	Serials  []Serial `json:"serials"`
	Warranty bool     `json:"warranty"`
}

type LineItem struct {
	ID               int64           `json:"id"`
	TrayID           int64           `json:"tray_id"`
	Identity         Identity        `json:"identity"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountPct      decimal.Decimal `json:"discount_pct"`
	Urgent           bool            `json:"urgent"`
	NonRepairableQty int             `json:"non_repairable_qty"`
	BrandGroups      []BrandGroup    `json:"brand_groups,omitempty"`

	// Pre-group records carry a single brand and serial instead of groups.
	LegacyBrand  string `json:"legacy_brand,omitempty"`
	LegacySerial string `json:"legacy_serial,omitempty"`

	TechnicianID int64 `json:"technician_id,omitempty"`
}

// Location is where the item currently sits for merge purposes.
func (li LineItem) Location() DestinationKey {
	if li.TechnicianID == 0 {
		return PoolKey
	}
	return TechnicianKey(li.TechnicianID)
}

// DisplayRow is one or more line items sharing an identity, merged for display.
// It is derived on every read and never stored.
//
// UnitPrice and DiscountPct come from the first item. When the merged items
// disagree on either, MixedPrices is set and only LineBase and LineNet, summed
// over every item, describe the row's money.
type DisplayRow struct {
	Key              string          `json:"key"`
	Identity         Identity        `json:"identity"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountPct      decimal.Decimal `json:"discount_pct"`
	MixedPrices      bool            `json:"mixed_prices,omitempty"`
	LineBase         decimal.Decimal `json:"line_base"`
	LineNet          decimal.Decimal `json:"line_net"`
	Urgent           bool            `json:"urgent"`
	NonRepairableQty int             `json:"non_repairable_qty"`
	BrandGroups      []BrandGroup    `json:"brand_groups,omitempty"`
	SourceIDs        []int64         `json:"source_ids"`
}

func (r DisplayRow) IsMerged() bool {
	return len(r.SourceIDs) > 1
}
