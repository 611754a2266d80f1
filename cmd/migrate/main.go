package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"gmedash/internal/repository"
)

const (
	cmdUp      = "up"
	cmdDown    = "down"
	cmdVersion = "version"

	usage = "usage: go run ./cmd/migrate [up|down|version] [steps]"
)

var (
	loadEnvFunc = godotenv.Load
	openPool    = pgxpool.New
)

func main() {
	loadEnvFunc()

	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	dsn := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := openPool(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := repository.EnsureMigrationTable(ctx, pool); err != nil {
		log.Fatalf("ensure schema_migrations table: %v", err)
	}

	migrations, err := repository.LoadMigrations(repository.MigrationsFS)
	if err != nil {
		log.Fatalf("load migrations: %v", err)
	}

	switch os.Args[1] {
	case cmdUp:
		applied, err := repository.ApplyUp(ctx, pool, migrations)
		if err != nil {
			log.Fatalf("apply migrations up: %v", err)
		}
		log.Printf("migrations up complete (%d applied)", applied)
	case cmdDown:
		steps, err := parseSteps(os.Args[2:])
		if err != nil {
			log.Fatal(err)
		}
		rolledBack, err := repository.ApplyDown(ctx, pool, migrations, steps)
		if err != nil {
			log.Fatalf("apply migrations down: %v", err)
		}
		log.Printf("migrations down complete (%d rolled back)", rolledBack)
	case cmdVersion:
		version, name, err := repository.CurrentVersion(ctx, pool)
		if err != nil {
			log.Fatalf("read current version: %v", err)
		}
		if version == 0 {
			log.Println("no migrations applied")
			return
		}
		log.Printf("current version: %d (%s)", version, name)
	default:
		log.Fatalf("unknown command %q. %s", os.Args[1], usage)
	}
}

// parseSteps reads the optional step count of the down command; it defaults to one.
func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid down steps: %q", args[0])
	}
	return n, nil
}
