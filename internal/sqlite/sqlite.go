package sqlite

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interviewprep/internal/errors"
	"log/slog"
	"strings"
	"time"

	_ "embed"
	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
)

//go:embed schema.sql
var schemaDefinition string

type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to database and creates the schema.
//
// It establishes two database connections, one for read/write operations and one for read-only operations.
// This is a best practice mentioned in https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	var (
		err         error
		readWriteDB *sqlx.DB
		readDB      *sqlx.DB
		readMode    = "ro"
		writeMode   = "rwc"
		cache       = "private"
	)

	// For in-memory databases, we need shared cache mode so that both databases access the same data.
	//
	// Every in-memory database gets a unique name so that parallel tests do not share data.
	// See https://www.sqlite.org/inmemorydb.html.
	if strings.Contains(url, ":memory:") {
		url = uuid.NewString()
		readMode, writeMode, cache = "memory", "memory", "shared"
	}
	commonConfig := strings.Join([]string{
		// Write-ahead logging enables higher performance and concurrent readers.
		"_journal_mode=wal",
		// Avoids SQLITE_BUSY errors when database is under load.
		"_busy_timeout=5000",
		// Increases performance at the cost of durability https://www.sqlite.org/pragma.html#pragma_synchronous.
		"_synchronous=normal",
		"_foreign_keys=on",
		"_temp_store=memory",
		"cache=" + cache,
	}, "&")

	// The options prefixed with underscore '_' are SQLite pragmas documented at https://www.sqlite.org/pragma.html.
	// The options without leading underscore are SQLite URI parameters documented at https://www.sqlite.org/uri.html.
	readConfig := fmt.Sprintf("file:%s?mode=%s&_txlock=deferred&_query_only=true&%s", url, readMode, commonConfig)
	readWriteConfig := fmt.Sprintf("file:%s?mode=%s&_txlock=immediate&%s", url, writeMode, commonConfig)

	if readWriteDB, err = sqlx.ConnectContext(ctx, "sqlite3", readWriteConfig); err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}

	readWriteDB.SetMaxOpenConns(1)
	readWriteDB.SetMaxIdleConns(1)
	readWriteDB.SetConnMaxLifetime(time.Hour)
	readWriteDB.SetConnMaxIdleTime(time.Hour)

	// The schema has to exist before a read-only connection can open a new database file.
	if _, err = readWriteDB.ExecContext(ctx, schemaDefinition); err != nil {
		_ = readWriteDB.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	if readDB, err = sqlx.ConnectContext(ctx, "sqlite3", readConfig); err != nil {
		_ = readWriteDB.Close()
		return nil, errors.Wrap(err, "open read database")
	}

	maxReadConns := 10
	readDB.SetMaxOpenConns(maxReadConns)
	readDB.SetMaxIdleConns(maxReadConns)
	readDB.SetConnMaxLifetime(time.Hour)
	readDB.SetConnMaxIdleTime(time.Hour)

	return &Database{
		ReadWrite: readWriteDB,
		ReadOnly:  readDB,
		logger:    logger,
	}, nil
}

// Close closes both connection pools.
func (db *Database) Close() error {
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}
