package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if !dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery keeps placeholders", func(t *testing.T) {
		query := "SELECT * FROM world_states WHERE user_id = ? AND classroom_id = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() = %v, want unchanged", got)
		}
	})

	t.Run("IsUniqueViolation", func(t *testing.T) {
		uniqueErr := sqlite3.Error{
			Code:         sqlite3.ErrConstraint,
			ExtendedCode: sqlite3.ErrConstraintUnique,
		}
		if !dialect.IsUniqueViolation(uniqueErr) {
			t.Error("expected unique constraint error to be detected")
		}
		if !dialect.IsUniqueViolation(fmt.Errorf("insert daily event: %w", uniqueErr)) {
			t.Error("expected wrapped unique constraint error to be detected")
		}
		otherErr := sqlite3.Error{Code: sqlite3.ErrBusy}
		if dialect.IsUniqueViolation(otherErr) {
			t.Error("busy error should not be a unique violation")
		}
		if dialect.IsUniqueViolation(errors.New("plain error")) {
			t.Error("plain error should not be a unique violation")
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("RewriteQuery numbers placeholders", func(t *testing.T) {
		query := "UPDATE world_states SET xp = xp + ? WHERE id = ?"
		expected := "UPDATE world_states SET xp = xp + $1 WHERE id = $2"
		if got := dialect.RewriteQuery(query); got != expected {
			t.Errorf("RewriteQuery() = %v, want %v", got, expected)
		}
	})

	t.Run("IsUniqueViolation", func(t *testing.T) {
		uniqueErr := &pq.Error{Code: "23505"}
		if !dialect.IsUniqueViolation(uniqueErr) {
			t.Error("expected 23505 to be detected as unique violation")
		}
		if !dialect.IsUniqueViolation(fmt.Errorf("insert reward grant: %w", uniqueErr)) {
			t.Error("expected wrapped 23505 to be detected")
		}
		fkErr := &pq.Error{Code: "23503"}
		if dialect.IsUniqueViolation(fkErr) {
			t.Error("foreign key violation should not be a unique violation")
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if !dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})

	t.Run("DSN forces driver parameters", func(t *testing.T) {
		dsn := dialect.DSN(DialectConfig{URL: "user:pass@tcp(localhost:3306)/classquest"})
		for _, param := range []string{"parseTime=true", "multiStatements=true"} {
			if !strings.Contains(dsn, param) {
				t.Errorf("DSN missing %s: %s", param, dsn)
			}
		}

		dsn = dialect.DSN(DialectConfig{URL: "user:pass@tcp(localhost:3306)/classquest?parseTime=false"})
		if strings.Count(dsn, "parseTime") != 1 {
			t.Errorf("DSN should not duplicate an existing parseTime setting: %s", dsn)
		}
	})

	t.Run("IsUniqueViolation", func(t *testing.T) {
		dupErr := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
		if !dialect.IsUniqueViolation(dupErr) {
			t.Error("expected ER_DUP_ENTRY to be detected as unique violation")
		}
		if !dialect.IsUniqueViolation(fmt.Errorf("insert weekly result: %w", dupErr)) {
			t.Error("expected wrapped ER_DUP_ENTRY to be detected")
		}
		otherErr := &mysql.MySQLError{Number: 1213, Message: "Deadlock"}
		if dialect.IsUniqueViolation(otherErr) {
			t.Error("deadlock should not be a unique violation")
		}
	})
}
