package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
)

func (s *Storage) GetTray(ctx context.Context, trayID int64) (*storage.Tray, error) {
	const op = "storage.mysql.GetTray"

	stmt := `SELECT id, number, parent_tray_id, global_discount_pct, urgent_all, subscription, technician_id
		FROM trays WHERE id = ?`

	var (
		tray         storage.Tray
		number       sql.NullString
		parentID     sql.NullInt64
		technicianID sql.NullInt64
		subscription string
	)

	err := s.db.QueryRowContext(ctx, stmt, trayID).Scan(
		&tray.ID,
		&number,
		&parentID,
		&tray.GlobalDiscountPct,
		&tray.UrgentAll,
		&subscription,
		&technicianID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: tray id=%d: %w", op, trayID, storage.ErrTrayNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tray.Number = number.String
	tray.ParentTrayID = parentID.Int64
	tray.TechnicianID = technicianID.Int64
	tray.Subscription = storage.ParseSubscription(subscription)

	return &tray, nil
}

func (s *Storage) GetTrayItems(ctx context.Context, trayID int64) ([]storage.LineItem, error) {
	const op = "storage.mysql.GetTrayItems"

	stmt := `SELECT id, tray_id, instrument_id, service_id, part_id, quantity, unit_price, discount_pct,
			urgent, non_repairable_qty, brand_groups, brand, serial_number, technician_id
		FROM tray_items WHERE tray_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, stmt, trayID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []storage.LineItem{}
	for rows.Next() {
		var (
			item         storage.LineItem
			instrumentID int64
			serviceID    sql.NullInt64
			partID       sql.NullInt64
			brandGroups  []byte
			brand        sql.NullString
			serial       sql.NullString
			technicianID sql.NullInt64
		)

		err := rows.Scan(
			&item.ID,
			&item.TrayID,
			&instrumentID,
			&serviceID,
			&partID,
			&item.Quantity,
			&item.UnitPrice,
			&item.DiscountPct,
			&item.Urgent,
			&item.NonRepairableQty,
			&brandGroups,
			&brand,
			&serial,
			&technicianID,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		item.Identity = storage.IdentityFromColumns(instrumentID, serviceID.Int64, partID.Int64)
		item.LegacyBrand = brand.String
		item.LegacySerial = serial.String
		item.TechnicianID = technicianID.Int64

		if len(brandGroups) > 0 {
			if err := json.Unmarshal(brandGroups, &item.BrandGroups); err != nil {
				return nil, fmt.Errorf("%s: brand groups of item id=%d: %w", op, item.ID, err)
			}
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return items, nil
}

func (s *Storage) UpdateTrayTerms(ctx context.Context, trayID int64, terms storage.TrayTerms) error {
	const op = "storage.mysql.UpdateTrayTerms"

	stmt := `UPDATE trays SET global_discount_pct = ?, urgent_all = ?, subscription = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, stmt, terms.GlobalDiscountPct, terms.UrgentAll, string(terms.Subscription), trayID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected > 0 {
		return nil
	}

	// unchanged values also report zero affected rows
	var exists bool
	err = s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM trays WHERE id = ?)`, trayID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: tray id=%d: %w", op, trayID, storage.ErrTrayNotFound)
	}

	return nil
}

// InsertLineItem adds a line item to a tray and returns its id.
func (s *Storage) InsertLineItem(ctx context.Context, item storage.LineItem) (int64, error) {
	const op = "storage.mysql.InsertLineItem"

	var groups any
	if len(item.BrandGroups) > 0 {
		raw, err := json.Marshal(item.BrandGroups)
		if err != nil {
			return 0, fmt.Errorf("%s: brand groups: %w", op, err)
		}
		groups = string(raw)
	}

	stmt := `INSERT INTO tray_items (tray_id, instrument_id, service_id, part_id, quantity, unit_price, discount_pct,
			urgent, non_repairable_qty, brand_groups, brand, serial_number, technician_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, stmt,
		item.TrayID,
		item.Identity.InstrumentID,
		nullID(item.Identity.ServiceID),
		nullID(item.Identity.PartID),
		item.Quantity,
		item.UnitPrice,
		item.DiscountPct,
		item.Urgent,
		item.NonRepairableQty,
		groups,
		nullString(item.LegacyBrand),
		nullString(item.LegacySerial),
		nullID(item.TechnicianID),
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
