package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/go-sql-driver/mysql"
)

func (s *Storage) GetActiveTechnicians(ctx context.Context) ([]storage.Technician, error) {
	const op = "storage.mysql.GetActiveTechnicians"

	return s.technicians(ctx, op, `SELECT id, name, is_active FROM technicians WHERE is_active = TRUE ORDER BY name ASC`)
}

func (s *Storage) GetAllTechniciansAdmin(ctx context.Context) ([]storage.Technician, error) {
	const op = "storage.mysql.GetAllTechniciansAdmin"

	return s.technicians(ctx, op, `SELECT id, name, is_active FROM technicians ORDER BY id`)
}

func (s *Storage) technicians(ctx context.Context, op, stmt string) ([]storage.Technician, error) {
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	techs := []storage.Technician{}
	for rows.Next() {
		var t storage.Technician
		if err := rows.Scan(&t.ID, &t.Name, &t.IsActive); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		techs = append(techs, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return techs, nil
}

func (s *Storage) UpdateTechniciansAdmin(ctx context.Context, techs []storage.Technician) error {
	const op = "storage.mysql.UpdateTechniciansAdmin"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE technicians SET name = ?, is_active = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for _, t := range techs {
		res, err := stmt.ExecContext(ctx, t.Name, t.IsActive, t.ID)
		if err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("%s: name %q: %w", op, t.Name, storage.ErrTechnicianExists)
			}
			return fmt.Errorf("%s: technician id=%d: %w", op, t.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM technicians WHERE id = ?)`, t.ID).Scan(&exists); err != nil {
				return fmt.Errorf("%s: technician id=%d: %w", op, t.ID, err)
			}
			if !exists {
				return fmt.Errorf("%s: technician id=%d: %w", op, t.ID, storage.ErrTechnicianNotFound)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

func (s *Storage) CreateTechnicianAdmin(ctx context.Context, t storage.Technician) (int64, error) {
	const op = "storage.mysql.CreateTechnicianAdmin"

	res, err := s.db.ExecContext(ctx, `INSERT INTO technicians (name, is_active) VALUES (?, ?)`, t.Name, t.IsActive)
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("%s: name %q: %w", op, t.Name, storage.ErrTechnicianExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func isDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry
}
