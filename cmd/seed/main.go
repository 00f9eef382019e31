package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/comptoirs/internal/storage/postgres"
	"github.com/vladislavdragonenkov/comptoirs/internal/version"
)

const defaultTimeout = 30 * time.Second

// Загружает эталонный набор данных (клиенты, товары, заказы) в PostgreSQL.
func main() {
	var (
		dsn     string
		migrate bool
	)

	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: COMPTOIRS_POSTGRES_DSN)")
	flag.BoolVar(&migrate, "migrate", true, "apply pending migrations before seeding")
	flag.Parse()

	logger := log.WithField("component", "seed")
	logger.Info(version.String())

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("COMPTOIRS_POSTGRES_DSN"))
	}
	if dsn == "" {
		fail("COMPTOIRS_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if migrate {
		if err := store.EnsureSchema(ctx); err != nil {
			fail("apply migrations: %v", err)
		}
	}

	if err := store.ApplySeed(ctx); err != nil {
		fail("apply seed data: %v", err)
	}
	logger.Info("seed data applied")
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
