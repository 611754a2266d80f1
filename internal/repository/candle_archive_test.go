package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"gmedash/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type fakePool struct {
	execs     []string
	batch     *pgx.Batch
	batchErr  error
	candles   [][]any
	applied   []int64
	queryArgs []any
	commits   int
	rollbacks int
}

func (p *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execs = append(p.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (p *fakePool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	p.batch = b
	return &fakeBatchResults{err: p.batchErr}
}

func (p *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.queryArgs = args
	if strings.Contains(sql, "schema_migrations") {
		data := make([][]any, 0, len(p.applied))
		for _, v := range p.applied {
			data = append(data, []any{v})
		}
		return &fakeRows{data: data}, nil
	}
	return &fakeRows{data: p.candles}, nil
}

func (p *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if len(p.applied) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: []any{p.applied[len(p.applied)-1], "latest"}}
}

func (p *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	return &fakeTx{pool: p}, nil
}

// fakeTx implements only what migrations use; other methods panic.
type fakeTx struct {
	pgx.Tx
	pool *fakePool
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.pool.execs = append(tx.pool.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.pool.commits++
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.pool.rollbacks++
	return nil
}

type fakeBatchResults struct {
	err error
}

func (b *fakeBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, b.err }
func (b *fakeBatchResults) Query() (pgx.Rows, error)         { return nil, errors.New("not implemented") }
func (b *fakeBatchResults) QueryRow() pgx.Row                { return fakeRow{err: errors.New("not implemented")} }
func (b *fakeBatchResults) Close() error                     { return nil }

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	pgx.Rows
	data [][]any
	i    int
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error { return assign(r.data[r.i-1], dest) }
func (r *fakeRows) Close()                 {}
func (r *fakeRows) Err() error             { return nil }

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("expected %d destinations, got %d", len(values), len(dest))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *time.Time:
			*d = v.(time.Time)
		case *float64:
			*d = v.(float64)
		case *int64:
			*d = v.(int64)
		case *string:
			*d = v.(string)
		default:
			return fmt.Errorf("unsupported destination %T", d)
		}
	}
	return nil
}

func testArchive(pool *fakePool) *CandleArchive {
	return NewCandleArchive(pool, trace.NewNoopTracerProvider().Tracer("test"))
}

func TestUpsertPointsBatchesValidDates(t *testing.T) {
	pool := &fakePool{}
	archive := testArchive(pool)

	points := []domain.HistoricalPoint{
		{Date: "2026-01-12", Open: 20, High: 21, Low: 19, Close: 20.5, Volume: 1000},
		{Date: "bogus", Close: 1},
		{Date: "2026-01-13", Open: 21, High: 22, Low: 20, Close: 21.5, Volume: 2000},
	}
	if err := archive.UpsertPoints(context.Background(), "GME", points); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.batch == nil || pool.batch.Len() != 2 {
		t.Fatalf("expected 2 queued upserts, got %+v", pool.batch)
	}
	args := pool.batch.QueuedQueries[0].Arguments
	if args[0] != "GME" || !args[1].(time.Time).Equal(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)) || args[5] != 20.5 {
		t.Fatalf("unexpected arguments: %v", args)
	}
}

func TestUpsertPointsEmptyIsNoop(t *testing.T) {
	pool := &fakePool{}
	if err := testArchive(pool).UpsertPoints(context.Background(), "GME", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.batch != nil {
		t.Fatal("expected no batch for empty input")
	}
}

func TestUpsertPointsReturnsBatchError(t *testing.T) {
	pool := &fakePool{batchErr: errors.New("constraint violation")}
	err := testArchive(pool).UpsertPoints(context.Background(), "GME", []domain.HistoricalPoint{{Date: "2026-01-12", Close: 1}})
	if err == nil || !strings.Contains(err.Error(), "constraint violation") {
		t.Fatalf("expected batch error, got %v", err)
	}
}

func TestGetRangeFormatsDays(t *testing.T) {
	pool := &fakePool{candles: [][]any{
		{time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), 20.0, 21.0, 19.0, 20.5, 1000.0},
		{time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC), 21.0, 22.0, 20.0, 21.5, 2000.0},
	}}
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	points, err := testArchive(pool).GetRange(context.Background(), "GME", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 || points[0].Date != "2026-01-12" || points[1].Close != 21.5 {
		t.Fatalf("unexpected points: %+v", points)
	}
	if pool.queryArgs[0] != "GME" || !pool.queryArgs[1].(time.Time).Equal(from) {
		t.Fatalf("unexpected query args: %v", pool.queryArgs)
	}
}

func TestRunMigrationsAppliesPending(t *testing.T) {
	pool := &fakePool{applied: []int64{1}}
	if err := testArchive(pool).RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.commits != 1 {
		t.Fatalf("expected one pending migration, got %d commits", pool.commits)
	}
	joined := strings.Join(pool.execs, "\n")
	if !strings.Contains(joined, "schema_migrations") || !strings.Contains(joined, "updated_at") {
		t.Fatalf("unexpected statements: %s", joined)
	}
	if strings.Contains(joined, "CREATE TABLE IF NOT EXISTS daily_candles") {
		t.Fatal("applied migration should not run again")
	}
}

func TestCurrentVersion(t *testing.T) {
	version, _, err := CurrentVersion(context.Background(), &fakePool{})
	if err != nil || version != 0 {
		t.Fatalf("expected version 0, got %d (%v)", version, err)
	}
	version, name, err := CurrentVersion(context.Background(), &fakePool{applied: []int64{1, 2}})
	if err != nil || version != 2 || name != "latest" {
		t.Fatalf("unexpected version: %d %s %v", version, name, err)
	}
}

func TestApplyDownRejectsZeroSteps(t *testing.T) {
	if _, err := ApplyDown(context.Background(), &fakePool{}, nil, 0); err == nil {
		t.Fatal("expected error for zero steps")
	}
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations(MigrationsFS)
	if err != nil {
		t.Fatalf("unexpected error loading embedded migrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Fatalf("unexpected versions: %d %d", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].UpSQL == "" || migrations[0].DownSQL == "" {
		t.Fatal("expected non-empty up/down sql for first migration")
	}
}

func TestLoadMigrationsRequiresPairs(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0001_only_up.up.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := LoadMigrations(fsys); err == nil {
		t.Fatal("expected error for missing down migration")
	}

	fsys = fstest.MapFS{
		"migrations/bad-name.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := LoadMigrations(fsys); err == nil {
		t.Fatal("expected error for invalid filename")
	}
}
