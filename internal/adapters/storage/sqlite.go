package storage

// sqlite.go — persistencia del ledger en SQLite (pure Go, sin CGo).
//
// Estrategia:
//   - `ledger`: una sola fila con el demo balance.
//   - `holdings`: una fila por ticker.
//   - Save reescribe el estado completo en una transacción: el ledger es
//     pequeño (decenas de filas como mucho) y así el todo-o-nada es trivial.
//   - El dinero se guarda como TEXT decimal, nunca como REAL.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/adelgadom/papertrade/internal/domain"
)

const schema = `
-- Estado global del ledger: una única fila
CREATE TABLE IF NOT EXISTS ledger (
    id           INTEGER PRIMARY KEY CHECK (id = 1),
    demo_balance TEXT     NOT NULL,
    updated_at   DATETIME NOT NULL
);

-- Una fila por posición
CREATE TABLE IF NOT EXISTS holdings (
    ticker     TEXT PRIMARY KEY,
    shares     INTEGER  NOT NULL,
    cost_basis TEXT     NOT NULL,
    price      TEXT     NOT NULL,
    updated_at DATETIME NOT NULL
);
`

// SQLiteStore implementa ports.LedgerStore usando SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load devuelve el estado guardado. ok es false en el primer arranque.
func (s *SQLiteStore) Load(ctx context.Context) (decimal.Decimal, []domain.Holding, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT demo_balance FROM ledger WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil, false, nil
	}
	if err != nil {
		return decimal.Zero, nil, false, fmt.Errorf("storage.Load: query balance: %w", err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, nil, false, fmt.Errorf("storage.Load: parse balance %q: %w", raw, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker, shares, cost_basis, price FROM holdings ORDER BY ticker`)
	if err != nil {
		return decimal.Zero, nil, false, fmt.Errorf("storage.Load: query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []domain.Holding
	for rows.Next() {
		var h domain.Holding
		var basis, price string
		if err := rows.Scan(&h.Ticker, &h.Shares, &basis, &price); err != nil {
			return decimal.Zero, nil, false, fmt.Errorf("storage.Load: scan row: %w", err)
		}
		if h.CostBasis, err = decimal.NewFromString(basis); err != nil {
			return decimal.Zero, nil, false, fmt.Errorf("storage.Load: parse cost basis %q: %w", basis, err)
		}
		if h.Price, err = decimal.NewFromString(price); err != nil {
			return decimal.Zero, nil, false, fmt.Errorf("storage.Load: parse price %q: %w", price, err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, nil, false, fmt.Errorf("storage.Load: rows: %w", err)
	}

	return balance, holdings, true, nil
}

// Save persiste el estado completo en una transacción.
func (s *SQLiteStore) Save(ctx context.Context, balance decimal.Decimal, holdings []domain.Holding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.Save: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger (id, demo_balance, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			demo_balance = excluded.demo_balance,
			updated_at   = excluded.updated_at
	`, balance.String(), now); err != nil {
		return fmt.Errorf("storage.Save: upsert balance: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM holdings`); err != nil {
		return fmt.Errorf("storage.Save: clear holdings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO holdings (ticker, shares, cost_basis, price, updated_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.Save: prepare: %w", err)
	}
	defer stmt.Close()

	for _, h := range holdings {
		if _, err := stmt.ExecContext(ctx,
			h.Ticker, h.Shares, h.CostBasis.String(), h.Price.String(), now,
		); err != nil {
			return fmt.Errorf("storage.Save: insert %s: %w", h.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.Save: commit: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
