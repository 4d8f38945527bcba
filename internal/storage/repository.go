package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ichinichi/internal/core"

	_ "modernc.org/sqlite"
)

const itemColumns = `id, name, price, cadence, payment_start, payment_end,
	usage_start, usage_end, category, cost_per_day, created_at, updated_at`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert implements ItemStore
func (r *SQLiteRepository) Insert(ctx context.Context, item core.Item) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sqliteArgs(item)...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("insert %s: %w", item.ID, ErrDuplicateID)
		}
		return fmt.Errorf("insert item: %w", err)
	}

	slog.DebugContext(ctx, "Item saved to SQLite",
		"id", item.ID,
		"name", item.Name,
		"cost_per_day", item.CostPerDay)
	return nil
}

// Update implements ItemStore
func (r *SQLiteRepository) Update(ctx context.Context, item core.Item) error {
	args := sqliteArgs(item)
	// id moves to the WHERE clause
	res, err := r.db.ExecContext(ctx, `
		UPDATE items SET name = ?, price = ?, cadence = ?, payment_start = ?, payment_end = ?,
			usage_start = ?, usage_end = ?, category = ?, cost_per_day = ?, created_at = ?, updated_at = ?
		WHERE id = ?`,
		append(args[1:], args[0])...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return checkAffected(res, "update", item.ID)
}

// Delete implements ItemStore
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return checkAffected(res, "delete", id)
}

// Get implements ItemStore
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanSQLiteItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Item{}, fmt.Errorf("get %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Item{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// List implements ItemStore
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []core.Item{}
	for rows.Next() {
		item, err := scanSQLiteItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Ping checks the database connection for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func sqliteArgs(item core.Item) []any {
	var payStart, payEnd sql.NullString
	if item.PaymentPeriod != nil {
		payStart = sql.NullString{String: item.PaymentPeriod.Start.String(), Valid: true}
		payEnd = sql.NullString{String: item.PaymentPeriod.End.String(), Valid: true}
	}
	return []any{
		item.ID,
		item.Name,
		item.Price,
		string(item.Cadence),
		payStart,
		payEnd,
		item.UsagePeriod.Start.String(),
		item.UsagePeriod.End.String(),
		item.Category,
		item.CostPerDay,
		item.CreatedAt.UTC().Format(time.RFC3339Nano),
		item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func scanSQLiteItem(s rowScanner) (core.Item, error) {
	var (
		item                 core.Item
		cadence              string
		payStart, payEnd     sql.NullString
		usageStart, usageEnd string
		createdAt, updatedAt string
	)
	err := s.Scan(&item.ID, &item.Name, &item.Price, &cadence, &payStart, &payEnd,
		&usageStart, &usageEnd, &item.Category, &item.CostPerDay, &createdAt, &updatedAt)
	if err != nil {
		return core.Item{}, err
	}
	item.Cadence = core.PaymentCadence(cadence)

	if item.UsagePeriod, err = core.NewDateRange(usageStart, usageEnd); err != nil {
		return core.Item{}, fmt.Errorf("usage period of %s: %w", item.ID, err)
	}
	if payStart.Valid && payEnd.Valid {
		pp, err := core.NewDateRange(payStart.String, payEnd.String)
		if err != nil {
			return core.Item{}, fmt.Errorf("payment period of %s: %w", item.ID, err)
		}
		item.PaymentPeriod = &pp
	}
	if item.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return core.Item{}, fmt.Errorf("created_at of %s: %w", item.ID, err)
	}
	if item.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return core.Item{}, fmt.Errorf("updated_at of %s: %w", item.ID, err)
	}
	return item, nil
}

func checkAffected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, core.ErrNotFound)
	}
	return nil
}

var _ ItemStore = (*SQLiteRepository)(nil)
