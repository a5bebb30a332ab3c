package store

import (
	"errors"
	"strings"
)

// Sentinel errors shared by all backends.
var (
	// ErrUserNotFound indicates an operation that requires an existing profile.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateRecordDate indicates a second daily record for the same calendar date.
	ErrDuplicateRecordDate = errors.New("daily record already exists for date")
)

// Opts holds configuration for store backends.
type Opts struct {
	DSN string
}

// Option configures store creation.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite file path as the database DSN.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets a PostgreSQL connection string as the database DSN.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite".
// PostgreSQL DSNs use URL or key=value forms; anything else is treated as
// a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}
