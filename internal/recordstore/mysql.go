package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/chatql/chatql/internal/core"
)

// MySQLStore keeps every table's log in one append-only MySQL table:
//
//	CREATE TABLE chatql_records (
//	    id        BIGINT AUTO_INCREMENT PRIMARY KEY,
//	    table_id  VARCHAR(255) NOT NULL,
//	    record    TEXT NOT NULL,
//	    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
//	    INDEX idx_table (table_id, id)
//	)
//
// Rows are only ever inserted; the auto-increment id gives recency order.
type MySQLStore struct {
	db     *sql.DB
	closed bool
	logger *slog.Logger
}

const mysqlRecordsTable = "chatql_records"

// NewMySQLStore opens the connection pool, verifies it with a ping and
// ensures the log table exists.
func NewMySQLStore(host string, port int, database, username, password string, maxOpenConns, maxIdleConns int, connMaxLifetime, connectionTimeout time.Duration) (*MySQLStore, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&timeout=%s",
		username, password, host, port, database, connectionTimeout)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ddl := `CREATE TABLE IF NOT EXISTS ` + mysqlRecordsTable + ` (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		table_id VARCHAR(255) NOT NULL,
		record TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_table (table_id, id)
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("failed to ensure log table: %w", err)
	}

	return &MySQLStore{db: db, logger: slog.Default()}, nil
}

// Append inserts one log row.
func (m *MySQLStore) Append(ctx context.Context, tableID string, record string) error {
	if m.closed {
		return fmt.Errorf("record store is closed")
	}

	_, err := m.db.ExecContext(ctx,
		"INSERT INTO "+mysqlRecordsTable+" (table_id, record) VALUES (?, ?)",
		tableID, record)
	if err != nil {
		m.logger.Error("mysql append failed", "table", tableID, "error", err)
		return fmt.Errorf("failed to append to %s: %w", tableID, err)
	}
	return nil
}

// ReadRecent selects the newest rows for the table, then returns them oldest
// first.
func (m *MySQLStore) ReadRecent(ctx context.Context, tableID string, limit int) ([]string, error) {
	if m.closed {
		return nil, fmt.Errorf("record store is closed")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := m.db.QueryContext(ctx,
		"SELECT record FROM "+mysqlRecordsTable+" WHERE table_id = ? ORDER BY id DESC LIMIT ?",
		tableID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", tableID, err)
	}
	defer rows.Close()

	var newestFirst []string
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		newestFirst = append(newestFirst, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", tableID, err)
	}

	records := make([]string, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		records = append(records, newestFirst[i])
	}
	return records, nil
}

// DB exposes the pool so the MySQL declaration store can share it.
func (m *MySQLStore) DB() *sql.DB { return m.db }

// Close closes the connection pool.
func (m *MySQLStore) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}

// MySQLFactory implements Factory for the MySQL backend.
type MySQLFactory struct{}

func (f *MySQLFactory) Type() string { return "mysql" }

func (f *MySQLFactory) Validate(config Config) error {
	if config.Type != "mysql" {
		return fmt.Errorf("invalid type for MySQL factory: %s", config.Type)
	}
	if config.Host == "" {
		return fmt.Errorf("host is required for MySQL")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got: %d", config.Port)
	}
	if config.Database == "" {
		return fmt.Errorf("database is required for MySQL")
	}
	if config.Username == "" {
		return fmt.Errorf("username is required for MySQL")
	}
	return nil
}

func (f *MySQLFactory) Create(config Config) (core.RecordStore, error) {
	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := config.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetime := config.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}
	timeout := config.ConnectionTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	store, err := NewMySQLStore(
		config.Host, config.Port, config.Database,
		config.Username, config.DBPassword,
		maxOpen, maxIdle, lifetime, timeout,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MySQL record store: %w", err)
	}
	return store, nil
}

func init() {
	RegisterFactory(&MySQLFactory{})
}
