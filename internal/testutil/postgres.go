// Package testutil provides a migrated PostgreSQL database for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/ClinicAgendaBack/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	setupOnce sync.Once
	sharedURL string
	setupErr  error
)

// databaseURL prefers TEST_DB_URL and otherwise starts one postgres:16-alpine container per
// test binary. The container is reaped by testcontainers when the binary exits.
func databaseURL() (string, error) {
	setupOnce.Do(func() {
		if url := os.Getenv("TEST_DB_URL"); url != "" {
			sharedURL = url
		} else {
			sharedURL, setupErr = startContainer(context.Background())
		}
		if setupErr == nil {
			setupErr = database.MigrateUp(sharedURL, migrationsDir())
		}
	})
	return sharedURL, setupErr
}

func startContainer(ctx context.Context) (url string, err error) {
	// Some Docker host lookups panic instead of returning an error when no daemon exists.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "agenda_test",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("postgres host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("postgres port: %w", err)
	}
	return fmt.Sprintf("postgres://test:testpass@%s:%s/agenda_test?sslmode=disable", host, port.Port()), nil
}

func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	// internal/testutil -> module root
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// NewPool returns a pool on an empty, migrated schema. The test is skipped when no
// database can be reached.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	url, err := databaseURL()
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `
		TRUNCATE appointment_history, appointments, kinesiology_orders, gym_monthly_payments,
			copayment_config, audit_events, patients, staff, specialties, insurance_plans
		RESTART IDENTITY CASCADE
	`); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	return pool
}
