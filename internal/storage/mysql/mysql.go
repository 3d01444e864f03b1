package mysql

import (
	"database/sql"
	"fmt"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/config"
	_ "github.com/go-sql-driver/mysql"
)

const (
	errDuplicateEntry  = 1062
	maxOpenConnections = 20
	maxIdleConnections = 5
)

type Storage struct {
	db *sql.DB
}

func New(cfg config.Config) (*Storage, error) {
	const op = "storage.mysql.New"

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open db: %w", op, err)
	}
	db.SetMaxOpenConns(maxOpenConnections)
	db.SetMaxIdleConns(maxIdleConnections)

	return &Storage{db: db}, nil
}

// NewWithDB wraps an already opened pool.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// nullID stores 0 as NULL for the optional foreign keys.
func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
