package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

const mysqlTablesTable = "chatql_tables"

// MySQLDeclarationStore keeps declarations in a MySQL table keyed by table
// ID. It shares the pool with the MySQL record store.
type MySQLDeclarationStore struct {
	db     *sql.DB
	closed bool
}

// NewMySQLDeclarationStore ensures the catalog table exists on the shared
// pool.
func NewMySQLDeclarationStore(ctx context.Context, db *sql.DB) (*MySQLDeclarationStore, error) {
	ddl := `CREATE TABLE IF NOT EXISTS ` + mysqlTablesTable + ` (
		table_id VARCHAR(255) PRIMARY KEY,
		declaration TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("failed to ensure catalog table: %w", err)
	}
	return &MySQLDeclarationStore{db: db}, nil
}

func (m *MySQLDeclarationStore) PutDeclaration(ctx context.Context, tableID string, declaration string) error {
	if m.closed {
		return fmt.Errorf("declaration store is closed")
	}
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO "+mysqlTablesTable+" (table_id, declaration) VALUES (?, ?) ON DUPLICATE KEY UPDATE declaration = VALUES(declaration)",
		tableID, declaration)
	if err != nil {
		return fmt.Errorf("failed to store declaration for %s: %w", tableID, err)
	}
	return nil
}

func (m *MySQLDeclarationStore) GetDeclaration(ctx context.Context, tableID string) (string, bool, error) {
	if m.closed {
		return "", false, fmt.Errorf("declaration store is closed")
	}
	var decl string
	err := m.db.QueryRowContext(ctx,
		"SELECT declaration FROM "+mysqlTablesTable+" WHERE table_id = ?", tableID).Scan(&decl)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read declaration for %s: %w", tableID, err)
	}
	return decl, true, nil
}

func (m *MySQLDeclarationStore) DeleteDeclaration(ctx context.Context, tableID string) error {
	if m.closed {
		return fmt.Errorf("declaration store is closed")
	}
	if _, err := m.db.ExecContext(ctx,
		"DELETE FROM "+mysqlTablesTable+" WHERE table_id = ?", tableID); err != nil {
		return fmt.Errorf("failed to delete declaration for %s: %w", tableID, err)
	}
	return nil
}

func (m *MySQLDeclarationStore) ListTables(ctx context.Context) ([]string, error) {
	if m.closed {
		return nil, fmt.Errorf("declaration store is closed")
	}
	rows, err := m.db.QueryContext(ctx,
		"SELECT table_id FROM "+mysqlTablesTable+" ORDER BY table_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan table id: %w", err)
		}
		tables = append(tables, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// Close marks the store closed without closing the shared pool; the record
// store owns the connection.
func (m *MySQLDeclarationStore) Close() error {
	m.closed = true
	return nil
}
