package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// DestinationKey names where a quantity goes: the current actor, a technician,
// a new physical sub-tray or the unassigned pool.
type DestinationKey string

const (
	SelfKey DestinationKey = "self"
	PoolKey DestinationKey = "pool"

	technicianPrefix = "tech:"
	trayPrefix       = "tray:"
)

func TechnicianKey(id int64) DestinationKey {
	return DestinationKey(fmt.Sprintf("%s%d", technicianPrefix, id))
}

// TrayKey is a synthetic key for the n-th sub-tray created by a split. The
// persistence layer turns it into a real tray when the moves are applied.
func TrayKey(n int) DestinationKey {
	return DestinationKey(fmt.Sprintf("%s%d", trayPrefix, n))
}

// Technician returns the technician id behind a tech:<id> key.
func (k DestinationKey) Technician() (int64, bool) {
	return k.suffix(technicianPrefix)
}

// SubTray returns n for a tray:<n> key.
func (k DestinationKey) SubTray() (int64, bool) {
	return k.suffix(trayPrefix)
}

func (k DestinationKey) suffix(prefix string) (int64, bool) {
	s := string(k)
	if !strings.HasPrefix(s, prefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(s[len(prefix):], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Valid reports whether the key is one the persistence layer can resolve.
func (k DestinationKey) Valid() bool {
	if k == SelfKey || k == PoolKey {
		return true
	}
	if _, ok := k.Technician(); ok {
		return true
	}
	_, ok := k.SubTray()
	return ok
}

// MoveOperation moves Quantity of line item RowID out of SourceTrayID.
type MoveOperation struct {
	RowID          int64          `json:"row_id"`
	SourceTrayID   int64          `json:"source_tray_id"`
	DestinationKey DestinationKey `json:"destination_key"`
	Quantity       int            `json:"quantity"`
}

type Technician struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// JournalEntry records one applied move. ResultRowID is the row that now holds
// the moved units: the source row itself for a whole move, a copy otherwise.
type JournalEntry struct {
	BatchID           string         `json:"batch_id"`
	RowID             int64          `json:"row_id"`
	ResultRowID       int64          `json:"result_row_id"`
	SourceTrayID      int64          `json:"source_tray_id"`
	DestinationKey    DestinationKey `json:"destination_key"`
	DestinationTrayID int64          `json:"destination_tray_id"`
	TechnicianID      int64          `json:"technician_id,omitempty"`
	Quantity          int            `json:"quantity"`
}
