package storage

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrTrayNotFound       = errors.New("tray not found")
	ErrTechnicianNotFound = errors.New("technician not found")
	ErrTechnicianExists   = errors.New("technician already exists")
	ErrLineItemNotFound   = errors.New("line item not found")

	// ErrStalePlan means the tray changed between planning and applying.
	ErrStalePlan = errors.New("plan no longer matches the tray")
)

type SubscriptionType string

const (
	SubscriptionNone     SubscriptionType = "none"
	SubscriptionServices SubscriptionType = "services"
	SubscriptionParts    SubscriptionType = "parts"
	SubscriptionBoth     SubscriptionType = "both"
)

// CoversServices reports whether the plan rebates service work.
func (s SubscriptionType) CoversServices() bool {
	return s == SubscriptionServices || s == SubscriptionBoth
}

// CoversParts reports whether the plan rebates parts.
func (s SubscriptionType) CoversParts() bool {
	return s == SubscriptionParts || s == SubscriptionBoth
}

// ParseSubscription maps unknown or empty values to SubscriptionNone.
func ParseSubscription(value string) SubscriptionType {
	switch s := SubscriptionType(value); s {
	case SubscriptionServices, SubscriptionParts, SubscriptionBoth:
		return s
	default:
		return SubscriptionNone
	}
}

type Tray struct {
	ID                int64            `json:"id"`
	Number            string           `json:"number"`
	ParentTrayID      int64            `json:"parent_tray_id,omitempty"`
	GlobalDiscountPct decimal.Decimal  `json:"global_discount_pct"`
	UrgentAll         bool             `json:"urgent_all"`
	Subscription      SubscriptionType `json:"subscription"`
	TechnicianID      int64            `json:"technician_id,omitempty"`
}

// IsPool reports whether the tray is the unassigned pool, i.e. has no number.
func (t Tray) IsPool() bool {
	return t.Number == ""
}

// TrayTerms are the tray-level inputs of the pricing calculator.
type TrayTerms struct {
	GlobalDiscountPct decimal.Decimal  `json:"global_discount_pct"`
	UrgentAll         bool             `json:"urgent_all"`
	Subscription      SubscriptionType `json:"subscription"`
}

func (t Tray) Terms() TrayTerms {
	return TrayTerms{
		GlobalDiscountPct: t.GlobalDiscountPct,
		UrgentAll:         t.UrgentAll,
		Subscription:      t.Subscription,
	}
}
