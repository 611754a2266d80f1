package repository

import (
	"context"
	"fmt"
	"time"

	"gmedash/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const upsertDailyCandle = `INSERT INTO daily_candles (symbol, day, open, high, low, close, volume, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	 ON CONFLICT (symbol, day) DO UPDATE SET
	     open = EXCLUDED.open,
	     high = EXCLUDED.high,
	     low = EXCLUDED.low,
	     close = EXCLUDED.close,
	     volume = EXCLUDED.volume,
	     updated_at = NOW()`

// CandleArchive stores every daily point a provider returned so history can
// be served once all caches are empty.
type CandleArchive struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewCandleArchive(pool PgxPool, tracer trace.Tracer) *CandleArchive {
	return &CandleArchive{pool: pool, tracer: tracer}
}

func (r *CandleArchive) RunMigrations(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "candle-archive.run-migrations")
	defer span.End()

	migrations, err := LoadMigrations(MigrationsFS)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	if err := EnsureMigrationTable(ctx, r.pool); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	applied, err := ApplyUp(ctx, r.pool, migrations)
	span.SetAttributes(attribute.Int("applied", applied))
	return err
}

// UpsertPoints writes points in one batch. Points with an unparseable date
// are skipped.
func (r *CandleArchive) UpsertPoints(ctx context.Context, symbol string, points []domain.HistoricalPoint) error {
	if len(points) == 0 {
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "candle-archive.upsert-points")
	defer span.End()

	batch := &pgx.Batch{}
	for _, p := range points {
		day, err := time.Parse(domain.DateLayout, p.Date)
		if err != nil {
			continue
		}
		batch.Queue(upsertDailyCandle, symbol, day, p.Open, p.High, p.Low, p.Close, p.Volume)
	}
	queued := batch.Len()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("points", queued))
	if queued == 0 {
		return nil
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert daily candle: %w", err)
		}
	}
	return nil
}

// GetRange returns the archived points of symbol between from and to,
// oldest first.
func (r *CandleArchive) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]domain.HistoricalPoint, error) {
	ctx, span := r.tracer.Start(ctx, "candle-archive.get-range")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	rows, err := r.pool.Query(ctx,
		`SELECT day, open, high, low, close, volume
		 FROM daily_candles
		 WHERE symbol = $1 AND day >= $2 AND day <= $3 AND close > 0
		 ORDER BY day ASC`,
		symbol, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.HistoricalPoint
	for rows.Next() {
		var day time.Time
		var p domain.HistoricalPoint
		if err := rows.Scan(&day, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, err
		}
		p.Date = day.UTC().Format(domain.DateLayout)
		points = append(points, p)
	}
	return points, rows.Err()
}
