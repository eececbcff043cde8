//go:build integration_pg

// Package pgtest starts a disposable postgres with the feed import schema for integration tests
package pgtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"merchantfeed/internal/platform/store"
	"merchantfeed/migrations"
)

// Start runs postgres in a container, applies the migrations and returns an open store
// the container and the store are released on test cleanup
func Start(t *testing.T) *store.Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "feeds",
				"POSTGRES_PASSWORD": "feeds",
				"POSTGRES_DB":       "feeds",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	s, err := store.Open(ctx, store.Config{
		AppName: "merchantfeed-test",
		PG: store.PGConfig{
			Enabled:  true,
			URL:      fmt.Sprintf("postgres://feeds:feeds@%s:%s/feeds?sslmode=disable", host, port.Port()),
			MaxConns: 4,
			LogSQL:   testing.Verbose(),
		},
	}, store.WithLogger(zerolog.New(zerolog.NewTestWriter(t))))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	stmts, err := migrations.Postgres()
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, sql := range stmts {
		if _, err := s.PG.Exec(ctx, sql); err != nil {
			t.Fatalf("apply migration: %v", err)
		}
	}
	return s
}
