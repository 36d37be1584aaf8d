package results

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect hides the differences between the supported SQL backends.
type Dialect interface {
	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// DSN builds the data source name from a file path or URL.
	DSN(path, url string) string

	// RewriteQuery converts ? placeholders where the driver needs another form.
	RewriteQuery(query string) string

	// InsertIgnore turns a plain INSERT into one that skips duplicate keys.
	InsertIgnore(insert string) string

	// ConfigureConnection applies pool settings and per-connection pragmas.
	ConfigureConnection(db *sql.DB) error

	// MigrationsDir is the embedded subdirectory holding this dialect's scripts.
	MigrationsDir() string

	// MigrationsTableQuery creates the _migrations bookkeeping table.
	MigrationsTableQuery() string
}

// DialectFor maps a DB_TYPE value to a Dialect.
func DialectFor(kind string) (Dialect, error) {
	switch strings.ToLower(kind) {
	case "sqlite", "sqlite3", "":
		return SQLite{}, nil
	case "postgres", "postgresql":
		return Postgres{}, nil
	case "mysql":
		return MySQL{}, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", kind)
	}
}

var placeholder = regexp.MustCompile(`\?`)

// numbered rewrites ? placeholders to $1, $2, ...
func numbered(query string) string {
	n := 0
	return placeholder.ReplaceAllStringFunc(query, func(string) string {
		n++
		return "$" + strconv.Itoa(n)
	})
}

func pool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
}

// SQLite is the default, file-backed dialect (mattn/go-sqlite3).
type SQLite struct{}

func (SQLite) DriverName() string { return "sqlite3" }

// DSN adds a busy timeout and WAL journaling to the file path.
func (SQLite) DSN(path, _ string) string {
	return path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
}

func (SQLite) RewriteQuery(q string) string { return q }

func (SQLite) InsertIgnore(insert string) string {
	return strings.Replace(insert, "INSERT INTO", "INSERT OR IGNORE INTO", 1)
}

func (SQLite) ConfigureConnection(db *sql.DB) error {
	pool(db)
	_, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`)
	return err
}

func (SQLite) MigrationsDir() string { return "sqlite" }

func (SQLite) MigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (
		name       TEXT PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
}

// Postgres uses lib/pq.
type Postgres struct{}

func (Postgres) DriverName() string { return "postgres" }

func (Postgres) DSN(_, url string) string { return url }

func (Postgres) RewriteQuery(q string) string { return numbered(q) }

func (Postgres) InsertIgnore(insert string) string {
	return strings.TrimSuffix(strings.TrimSpace(insert), ";") + " ON CONFLICT DO NOTHING"
}

func (Postgres) ConfigureConnection(db *sql.DB) error {
	pool(db)
	return nil
}

func (Postgres) MigrationsDir() string { return "postgres" }

func (Postgres) MigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (
		name       TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`
}

// MySQL uses go-sql-driver/mysql. Timestamps need parseTime=true.
type MySQL struct{}

func (MySQL) DriverName() string { return "mysql" }

func (MySQL) DSN(_, url string) string {
	if strings.Contains(url, "parseTime=") {
		return url
	}
	if strings.Contains(url, "?") {
		return url + "&parseTime=true"
	}
	return url + "?parseTime=true"
}

func (MySQL) RewriteQuery(q string) string { return q }

func (MySQL) InsertIgnore(insert string) string {
	return strings.Replace(insert, "INSERT INTO", "INSERT IGNORE INTO", 1)
}

func (MySQL) ConfigureConnection(db *sql.DB) error {
	pool(db)
	return nil
}

func (MySQL) MigrationsDir() string { return "mysql" }

func (MySQL) MigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (
		name       VARCHAR(255) PRIMARY KEY,
		applied_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
	)`
}
