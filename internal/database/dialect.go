package database

import (
	"database/sql"
	"strconv"
	"strings"
)

// Dialect abstracts the differences between the supported databases
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (? to $n for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies connection pool settings and any
	// database-specific session setup
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the per-dialect migrations directory name
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations
	// tracking table
	CreateMigrationsTableQuery() string

	// IsUniqueViolation reports whether err is a unique-constraint violation.
	// The cadence engine leans on this for every idempotency key: reward
	// grants, daily events, weekly results and world-state creation all
	// treat a violation as "someone else got there first", not a failure.
	IsUniqueViolation(err error) bool
}

// DialectConfig holds the connection settings a dialect needs
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// rewritePlaceholdersToNumbered converts each ? placeholder to $1, $2, ...
func rewritePlaceholdersToNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
