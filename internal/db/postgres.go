package db

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is nil when DATABASE_URL is unset or the server did not answer.
var Pool *pgxpool.Pool

var (
	newPool  = pgxpool.New
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

func InitPostgres(ctx context.Context) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		log.Println("Postgres disabled: historical archive unavailable")
		return
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		log.Printf("Warning: failed to create Postgres pool, archive disabled: %v", err)
		return
	}
	if err := pingPool(ctx, pool); err != nil {
		log.Printf("Warning: failed to connect to Postgres, archive disabled: %v", err)
		pool.Close()
		return
	}
	Pool = pool
	log.Println("Connected to Postgres")
}

func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
