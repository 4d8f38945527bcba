package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ichinichi/internal/core"
)

const pgUniqueViolation = "23505"

// PostgresRepository is the ItemStore backed by a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects, pings and migrates the database at
// databaseURL.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Ping checks the pool for readiness probes.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Insert(ctx context.Context, item core.Item) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO items (`+itemColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		pgArgs(item)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("insert %s: %w", item.ID, ErrDuplicateID)
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, item core.Item) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE items SET name=$2, price=$3, cadence=$4, payment_start=$5, payment_end=$6,
		   usage_start=$7, usage_end=$8, category=$9, cost_per_day=$10, created_at=$11, updated_at=$12
		 WHERE id=$1`,
		pgArgs(item)...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s: %w", item.ID, core.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (core.Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id=$1`, id)
	item, err := scanPgItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Item{}, fmt.Errorf("get %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Item{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]core.Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []core.Item{}
	for rows.Next() {
		item, err := scanPgItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func pgArgs(item core.Item) []any {
	var payStart, payEnd *time.Time
	if item.PaymentPeriod != nil {
		s, e := item.PaymentPeriod.Start.Time, item.PaymentPeriod.End.Time
		payStart, payEnd = &s, &e
	}
	return []any{
		item.ID,
		item.Name,
		item.Price,
		string(item.Cadence),
		payStart,
		payEnd,
		item.UsagePeriod.Start.Time,
		item.UsagePeriod.End.Time,
		item.Category,
		item.CostPerDay,
		item.CreatedAt,
		item.UpdatedAt,
	}
}

func scanPgItem(s rowScanner) (core.Item, error) {
	var (
		item                 core.Item
		cadence              string
		payStart, payEnd     *time.Time
		usageStart, usageEnd time.Time
	)
	err := s.Scan(&item.ID, &item.Name, &item.Price, &cadence, &payStart, &payEnd,
		&usageStart, &usageEnd, &item.Category, &item.CostPerDay, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return core.Item{}, err
	}
	item.Cadence = core.PaymentCadence(cadence)
	item.UsagePeriod = core.DateRange{Start: toDate(usageStart), End: toDate(usageEnd)}
	if payStart != nil && payEnd != nil {
		item.PaymentPeriod = &core.DateRange{Start: toDate(*payStart), End: toDate(*payEnd)}
	}
	return item, nil
}

func toDate(t time.Time) core.Date {
	return core.NewDate(t.Year(), int(t.Month()), t.Day())
}

var _ ItemStore = (*PostgresRepository)(nil)
