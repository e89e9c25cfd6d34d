package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	tables := []string{
		"users", "classrooms", "enrollments", "world_states", "xp_events",
		"reward_grants", "unlocks", "daily_events", "weekly_results",
		"class_days", "attendance_records", "assignments", "submissions",
	}
	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		if err := db.QueryRow(query, table).Scan(&name); err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestUniqueViolationDetection exercises the constraint-as-idempotency-key
// pattern the engine depends on
func TestUniqueViolationDetection(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	insert := "INSERT INTO users (email, password_hash, display_name, role) VALUES (?, ?, ?, ?)"
	if _, err := db.Exec(insert, "dup@example.com", "hash", "First", "teacher"); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	_, err := db.Exec(insert, "dup@example.com", "hash", "Second", "teacher")
	if err == nil {
		t.Fatal("Expected a unique violation on duplicate email")
	}
	if !db.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}

	if db.IsUniqueViolation(nil) {
		t.Error("IsUniqueViolation(nil) = true, want false")
	}
}

func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	id, err := db.ExecReturningID(
		"INSERT INTO users (email, password_hash, display_name, role) VALUES (?, ?, ?, ?)",
		"id@example.com", "hash", "Test", "student")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if id < 1 {
		t.Errorf("Expected a positive id, got %d", id)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	_, err = tx.Exec("INSERT INTO users (email, password_hash, display_name, role) VALUES (?, ?, ?, ?)",
		"tx@example.com", "hash", "Tx User", "teacher")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", "tx@example.com").Scan(&count); err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}

	tx2, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}
	_, err = tx2.Exec("INSERT INTO users (email, password_hash, display_name, role) VALUES (?, ?, ?, ?)",
		"rollback@example.com", "hash", "Rolled Back", "teacher")
	if err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}
	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", "rollback@example.com").Scan(&count); err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 users after rollback, got %d", count)
	}
}
