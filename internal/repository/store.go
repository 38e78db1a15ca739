// Package repository is the record store behind the extraction core:
// divisions, sheet metadata, and extracted items, keyed by opaque ids.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS divisions (
	id    INTEGER PRIMARY KEY,
	code  TEXT NOT NULL,
	name  TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sheet_metadata (
	drawing_id   TEXT    NOT NULL,
	page_number  INTEGER NOT NULL,
	sheet_number TEXT    NOT NULL,
	sheet_name   TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (drawing_id, page_number)
);

CREATE TABLE IF NOT EXISTS extracted_items (
	id            TEXT PRIMARY KEY,
	drawing_id    TEXT NOT NULL,
	item_name     TEXT NOT NULL,
	category      TEXT NOT NULL,
	division_id   INTEGER NOT NULL,
	division_code TEXT NOT NULL,
	division_name TEXT NOT NULL,
	sheet_number  TEXT NOT NULL,
	sheet_name    TEXT,
	x             INTEGER NOT NULL,
	y             INTEGER NOT NULL,
	width         INTEGER NOT NULL,
	height        INTEGER NOT NULL,
	zone          TEXT,
	detail        TEXT,
	data          TEXT NOT NULL DEFAULT '{}',
	confidence    REAL NOT NULL,
	callout_id    TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_extracted_items_drawing ON extracted_items(drawing_id);
`

// Store is a sqlite-backed implementation of the core's collaborator
// surfaces: division snapshot, sheet metadata lookup, and the extracted-item
// sink.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the store with WAL and production pragmas applied.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SeedDivisions inserts the given divisions when the table is empty.
func (s *Store) SeedDivisions(ctx context.Context, divisions []entity.Division) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM divisions`).Scan(&n); err != nil {
		return fmt.Errorf("count divisions: %w", err)
	}
	if n > 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, d := range divisions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO divisions (id, code, name, color) VALUES (?, ?, ?, ?)`,
			d.ID, d.Code, d.Name, d.Color); err != nil {
			return fmt.Errorf("seed division %s: %w", d.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("store.divisions_seeded", "count", len(divisions))
	return nil
}

// ListDivisions returns the current division taxonomy. Divisions are
// user-mutable, so callers treat the result as a snapshot and never cache it.
func (s *Store) ListDivisions(ctx context.Context) ([]entity.Division, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name, color FROM divisions ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.Division
	for rows.Next() {
		var d entity.Division
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.Color); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// PutSheetMetadata upserts the sheet labels for a drawing's pages.
func (s *Store) PutSheetMetadata(ctx context.Context, drawingID string, sheets []entity.SheetMetadata) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, sh := range sheets {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sheet_metadata (drawing_id, page_number, sheet_number, sheet_name)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (drawing_id, page_number)
			DO UPDATE SET sheet_number = excluded.sheet_number, sheet_name = excluded.sheet_name`,
			drawingID, sh.PageNumber, sh.SheetNumber, sh.SheetName); err != nil {
			return fmt.Errorf("upsert sheet %d: %w", sh.PageNumber, err)
		}
	}
	return tx.Commit()
}

// GetSheetMetadata returns the sheet labels for a drawing, ordered by page.
func (s *Store) GetSheetMetadata(ctx context.Context, drawingID string) ([]entity.SheetMetadata, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page_number, sheet_number, sheet_name FROM sheet_metadata WHERE drawing_id = ? ORDER BY page_number`,
		drawingID)
	if err != nil {
		return nil, fmt.Errorf("get sheet metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.SheetMetadata
	for rows.Next() {
		var sh entity.SheetMetadata
		if err := rows.Scan(&sh.PageNumber, &sh.SheetNumber, &sh.SheetName); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// SaveExtractedItems persists a batch of items in one transaction: one row
// per item, one call per bulk run or interactive extraction.
func (s *Store) SaveExtractedItems(ctx context.Context, drawingID string, items []entity.ExtractedItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range items {
		data, err := json.Marshal(it.Data)
		if err != nil {
			return fmt.Errorf("encode item data: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO extracted_items
				(id, drawing_id, item_name, category, division_id, division_code, division_name,
				 sheet_number, sheet_name, x, y, width, height, zone, detail, data, confidence, callout_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), drawingID, it.ItemName, it.Category,
			it.CSIDivision.ID, it.CSIDivision.Code, it.CSIDivision.Name,
			it.Location.SheetNumber, it.Location.SheetName,
			it.Location.Coordinates.X, it.Location.Coordinates.Y,
			it.Location.Coordinates.Width, it.Location.Coordinates.Height,
			it.Location.Zone, it.Location.Detail,
			string(data), it.Confidence, it.CalloutID); err != nil {
			return fmt.Errorf("insert item %q: %w", it.ItemName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit items: %w", err)
	}
	s.logger.Info("store.items_saved", "drawing_id", drawingID, "count", len(items))
	return nil
}

// ListExtractedItems returns every persisted item of a drawing in insertion
// order.
func (s *Store) ListExtractedItems(ctx context.Context, drawingID string) ([]entity.ExtractedItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_name, category, division_id, division_code, division_name,
		       sheet_number, sheet_name, x, y, width, height, zone, detail, data, confidence, callout_id
		FROM extracted_items WHERE drawing_id = ? ORDER BY created_at, item_name`,
		drawingID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.ExtractedItem
	for rows.Next() {
		var (
			it        entity.ExtractedItem
			sheetName sql.NullString
			zone      sql.NullString
			detail    sql.NullString
			data      string
		)
		if err := rows.Scan(&it.ItemName, &it.Category,
			&it.CSIDivision.ID, &it.CSIDivision.Code, &it.CSIDivision.Name,
			&it.Location.SheetNumber, &sheetName,
			&it.Location.Coordinates.X, &it.Location.Coordinates.Y,
			&it.Location.Coordinates.Width, &it.Location.Coordinates.Height,
			&zone, &detail, &data, &it.Confidence, &it.CalloutID); err != nil {
			return nil, err
		}
		it.Location.SheetName = sheetName.String
		it.Location.Zone = zone.String
		it.Location.Detail = detail.String
		if err := json.Unmarshal([]byte(data), &it.Data); err != nil {
			return nil, fmt.Errorf("decode item data: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
