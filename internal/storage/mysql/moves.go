package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/google/uuid"
)

// ApplyMoves commits a plan in one transaction and journals every move under
// a fresh batch id. Either all moves land or none does.
func (s *Storage) ApplyMoves(ctx context.Context, trayID int64, moves []storage.MoveOperation) (string, error) {
	const op = "storage.mysql.ApplyMoves"

	batchID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	journal, err := tx.PrepareContext(ctx, `
		INSERT INTO tray_item_moves
		(batch_id, row_id, result_row_id, source_tray_id, destination_key, destination_tray_id, technician_id, quantity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("%s: prepare journal: %w", op, err)
	}
	defer journal.Close()

	a := &applier{tx: tx, trayID: trayID, subTrays: map[storage.DestinationKey]int64{}}

	for _, m := range moves {
		res, err := a.apply(ctx, m)
		if err != nil {
			return "", fmt.Errorf("%s: row id=%d to %s: %w", op, m.RowID, m.DestinationKey, err)
		}

		_, err = journal.ExecContext(ctx,
			batchID,
			m.RowID,
			res.rowID,
			m.SourceTrayID,
			string(m.DestinationKey),
			res.trayID,
			nullID(res.technicianID),
			m.Quantity,
		)
		if err != nil {
			return "", fmt.Errorf("%s: journal row id=%d: %w", op, m.RowID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return batchID, nil
}

type applier struct {
	tx       *sql.Tx
	trayID   int64
	subTrays map[storage.DestinationKey]int64
}

type placement struct {
	rowID        int64
	trayID       int64
	technicianID int64
}

type lockedRow struct {
	trayID        int64
	quantity      int
	nonRepairable int
	technicianID  int64
}

func (a *applier) apply(ctx context.Context, m storage.MoveOperation) (placement, error) {
	if m.Quantity <= 0 {
		return placement{}, fmt.Errorf("non-positive quantity %d: %w", m.Quantity, storage.ErrStalePlan)
	}
	if m.SourceTrayID != a.trayID {
		return placement{}, fmt.Errorf("row belongs to tray id=%d: %w", m.SourceTrayID, storage.ErrStalePlan)
	}

	row, err := a.lock(ctx, m.RowID)
	if err != nil {
		return placement{}, err
	}
	if row.trayID != m.SourceTrayID {
		return placement{}, fmt.Errorf("row moved to tray id=%d: %w", row.trayID, storage.ErrStalePlan)
	}
	if row.quantity < m.Quantity {
		return placement{}, fmt.Errorf("row holds %d, plan moves %d: %w", row.quantity, m.Quantity, storage.ErrStalePlan)
	}

	dest, err := a.resolve(ctx, m.DestinationKey, row)
	if err != nil {
		return placement{}, err
	}

	if m.Quantity == row.quantity {
		_, err := a.tx.ExecContext(ctx,
			`UPDATE tray_items SET tray_id = ?, technician_id = ? WHERE id = ?`,
			dest.trayID, nullID(dest.technicianID), m.RowID)
		if err != nil {
			return placement{}, fmt.Errorf("re-point: %w", err)
		}
		dest.rowID = m.RowID
		return dest, nil
	}

	// partial move: the copy takes the non-repairable units the source can no longer hold
	remaining := row.quantity - m.Quantity
	keepNR := min(row.nonRepairable, remaining)
	copyNR := row.nonRepairable - keepNR

	_, err = a.tx.ExecContext(ctx,
		`UPDATE tray_items SET quantity = ?, non_repairable_qty = ? WHERE id = ?`,
		remaining, keepNR, m.RowID)
	if err != nil {
		return placement{}, fmt.Errorf("decrement source: %w", err)
	}

	res, err := a.tx.ExecContext(ctx, `
		INSERT INTO tray_items (tray_id, instrument_id, service_id, part_id, quantity, unit_price, discount_pct,
			urgent, non_repairable_qty, brand_groups, brand, serial_number, technician_id)
		SELECT ?, instrument_id, service_id, part_id, ?, unit_price, discount_pct,
			urgent, ?, brand_groups, brand, serial_number, ?
		FROM tray_items WHERE id = ?
	`, dest.trayID, m.Quantity, copyNR, nullID(dest.technicianID), m.RowID)
	if err != nil {
		return placement{}, fmt.Errorf("insert copy: %w", err)
	}

	dest.rowID, err = res.LastInsertId()
	if err != nil {
		return placement{}, fmt.Errorf("insert copy: %w", err)
	}

	return dest, nil
}

func (a *applier) lock(ctx context.Context, rowID int64) (lockedRow, error) {
	var (
		row          lockedRow
		technicianID sql.NullInt64
	)

	err := a.tx.QueryRowContext(ctx,
		`SELECT tray_id, quantity, non_repairable_qty, technician_id FROM tray_items WHERE id = ? FOR UPDATE`,
		rowID,
	).Scan(&row.trayID, &row.quantity, &row.nonRepairable, &technicianID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lockedRow{}, storage.ErrLineItemNotFound
		}
		return lockedRow{}, fmt.Errorf("lock: %w", err)
	}

	row.technicianID = technicianID.Int64
	return row, nil
}

// resolve maps a destination key to the tray and technician the units end up with.
func (a *applier) resolve(ctx context.Context, key storage.DestinationKey, row lockedRow) (placement, error) {
	if key == storage.PoolKey {
		return placement{trayID: row.trayID}, nil
	}

	if techID, ok := key.Technician(); ok {
		var active bool
		err := a.tx.QueryRowContext(ctx, `SELECT is_active FROM technicians WHERE id = ?`, techID).Scan(&active)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !active) {
			return placement{}, fmt.Errorf("technician id=%d: %w", techID, storage.ErrTechnicianNotFound)
		}
		if err != nil {
			return placement{}, fmt.Errorf("technician id=%d: %w", techID, err)
		}
		return placement{trayID: row.trayID, technicianID: techID}, nil
	}

	if n, ok := key.SubTray(); ok {
		trayID, err := a.subTray(ctx, key, n)
		if err != nil {
			return placement{}, err
		}
		return placement{trayID: trayID, technicianID: row.technicianID}, nil
	}

	return placement{}, fmt.Errorf("cannot resolve destination %q: %w", key, storage.ErrStalePlan)
}

// subTray creates the child tray for a tray:<n> key once per batch. It inherits
// the parent's terms and gets the number "<parent>/<n>".
func (a *applier) subTray(ctx context.Context, key storage.DestinationKey, n int64) (int64, error) {
	if id, ok := a.subTrays[key]; ok {
		return id, nil
	}

	res, err := a.tx.ExecContext(ctx, `
		INSERT INTO trays (number, parent_tray_id, global_discount_pct, urgent_all, subscription, technician_id)
		SELECT CONCAT(COALESCE(number, CONCAT('#', id)), '/', ?), id, global_discount_pct, urgent_all, subscription, technician_id
		FROM trays WHERE id = ?
	`, n, a.trayID)
	if err != nil {
		return 0, fmt.Errorf("create sub-tray %d: %w", n, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("create sub-tray %d: %w", n, err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("create sub-tray %d: %w", n, storage.ErrTrayNotFound)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create sub-tray %d: %w", n, err)
	}

	a.subTrays[key] = id
	return id, nil
}

// MoveBatch returns the journal of one applied batch in insertion order.
func (s *Storage) MoveBatch(ctx context.Context, batchID string) ([]storage.JournalEntry, error) {
	const op = "storage.mysql.MoveBatch"

	rows, err := s.db.QueryContext(ctx, `
		SELECT row_id, result_row_id, source_tray_id, destination_key, destination_tray_id, technician_id, quantity
		FROM tray_item_moves WHERE batch_id = ? ORDER BY id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	entries := []storage.JournalEntry{}
	for rows.Next() {
		var (
			e            storage.JournalEntry
			technicianID sql.NullInt64
			key          string
		)
		err := rows.Scan(&e.RowID, &e.ResultRowID, &e.SourceTrayID, &key, &e.DestinationTrayID, &technicianID, &e.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		e.BatchID = batchID
		e.DestinationKey = storage.DestinationKey(key)
		e.TechnicianID = technicianID.Int64
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return entries, nil
}
