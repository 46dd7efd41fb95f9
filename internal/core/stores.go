package core

import (
	"context"
	"time"
)

// RecordStore is the append-only per-table record log the engine writes to
// and reads from. Implementations own persistence entirely; the engine never
// mutates or deletes a record.
type RecordStore interface {
	// Append adds one serialized record to the named table log.
	Append(ctx context.Context, tableID string, record string) error

	// ReadRecent returns up to limit of the most recently appended records
	// for the named table log, ordered oldest to newest.
	ReadRecent(ctx context.Context, tableID string, limit int) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// DeclarationStore persists table schema declaration text. The engine only
// parses and normalizes what it reads back; lifecycle of the physical
// container belongs to the backend.
type DeclarationStore interface {
	// PutDeclaration stores the declaration text for a table. An empty
	// declaration registers a schemaless table.
	PutDeclaration(ctx context.Context, tableID string, declaration string) error

	// GetDeclaration returns the declaration text for a table. ok is false
	// when the table is not registered.
	GetDeclaration(ctx context.Context, tableID string) (declaration string, ok bool, err error)

	// DeleteDeclaration removes a table's declaration.
	DeleteDeclaration(ctx context.Context, tableID string) error

	// ListTables returns the IDs of all registered tables.
	ListTables(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// SessionContext identifies who is calling and which table-set they operate
// in. The caller resolves it before invoking the engine; the engine itself
// holds no per-user state.
type SessionContext struct {
	// TenantID scopes table-sets, e.g. one chat server or workspace.
	TenantID string

	// UserID identifies the caller within the tenant.
	UserID string

	// TableSet is the caller's currently selected table-set. Empty means
	// none selected.
	TableSet string
}

// TableID composes the fully qualified log name for a table within the
// session's table-set.
func (s SessionContext) TableID(table string) string {
	name, _ := SanitizeTableName(table)
	return s.TenantID + "/" + s.TableSet + "/" + name
}

// SessionStore persists the per-user current table-set pointer. It backs the
// `use` operation; orchestration reads it through the facade, never directly.
type SessionStore interface {
	// GetTableSet returns the current table-set for a tenant/user pair.
	// ok is false when the user has not selected one.
	GetTableSet(ctx context.Context, tenantID, userID string) (name string, ok bool, err error)

	// SetTableSet records the current table-set for a tenant/user pair.
	SetTableSet(ctx context.Context, tenantID, userID, name string) error

	// Close releases backend resources.
	Close() error
}

// StoredRecord pairs a decoded row with its creation timestamp.
type StoredRecord struct {
	CreatedAt time.Time
	Values    Row
}
