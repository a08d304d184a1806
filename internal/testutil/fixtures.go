package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func InsertInsurancePlan(t *testing.T, pool *pgxpool.Pool, name string, tier *string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO insurance_plans (name, copayment_tier) VALUES ($1, $2) RETURNING id`,
		name, tier,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert insurance plan: %v", err)
	}
	return id
}

func InsertPatient(t *testing.T, pool *pgxpool.Pool, firstName, lastName string, email *string, planID *int64) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO patients (first_name, last_name, email, insurance_plan_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		firstName, lastName, email, planID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert patient: %v", err)
	}
	return id
}

func InsertSpecialty(t *testing.T, pool *pgxpool.Pool, name string, minutes int, category string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO specialties (name, slot_duration_minutes, category) VALUES ($1, $2, $3) RETURNING id`,
		name, minutes, category,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert specialty: %v", err)
	}
	return id
}

func InsertStaff(t *testing.T, pool *pgxpool.Pool, name string, email *string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO staff (name, email) VALUES ($1, $2) RETURNING id`,
		name, email,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert staff: %v", err)
	}
	return id
}

func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var count int
	if err := pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}

// RejectInserts makes every INSERT into table fail until the test ends.
func RejectInserts(t *testing.T, pool *pgxpool.Pool, table string) {
	t.Helper()
	ctx := context.Background()
	if _, err := pool.Exec(ctx, `
		CREATE OR REPLACE FUNCTION reject_insert() RETURNS trigger AS $$
		BEGIN
			RAISE EXCEPTION 'inserts into % are disabled', TG_TABLE_NAME;
		END;
		$$ LANGUAGE plpgsql
	`); err != nil {
		t.Fatalf("create reject_insert: %v", err)
	}
	if _, err := pool.Exec(ctx, `CREATE TRIGGER reject_insert BEFORE INSERT ON `+table+` FOR EACH ROW EXECUTE FUNCTION reject_insert()`); err != nil {
		t.Fatalf("create trigger on %s: %v", table, err)
	}
	t.Cleanup(func() {
		if _, err := pool.Exec(context.Background(), `DROP TRIGGER IF EXISTS reject_insert ON `+table); err != nil {
			t.Errorf("drop trigger on %s: %v", table, err)
		}
	})
}
