package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chatql/chatql/internal/core"
	"github.com/chatql/chatql/internal/sqlparse"
)

// Registry manages table lifecycle on top of a DeclarationStore. It
// validates declarations before they are persisted so the read path never
// sees an unparsable schema.
type Registry struct {
	decls  core.DeclarationStore
	logger *slog.Logger
}

func NewRegistry(decls core.DeclarationStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{decls: decls, logger: logger}
}

// CreateTable validates the declaration and persists its canonical
// rendering. An empty declaration registers a schemaless table.
func (r *Registry) CreateTable(ctx context.Context, session core.SessionContext, table string, declaration string) (core.Schema, error) {
	if session.TableSet == "" {
		return core.Schema{}, fmt.Errorf("%w: run `use <name>` first", core.ErrNoTableSet)
	}
	name, changed := core.SanitizeTableName(table)
	if name == "" {
		return core.Schema{}, fmt.Errorf("%w: table name %q has no usable characters", core.ErrSchemaSyntax, table)
	}
	if changed {
		r.logger.Info("table name sanitized", "requested", table, "stored", name)
	}

	schema, err := sqlparse.ParseSchema(declaration)
	if err != nil {
		return core.Schema{}, err
	}

	canonical := schema.Render()
	tableID := session.TableID(name)
	if err := r.decls.PutDeclaration(ctx, tableID, canonical); err != nil {
		return core.Schema{}, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	r.logger.Info("table created", "table", tableID, "columns", len(schema))
	return schema, nil
}

// DropTable removes a table's declaration. Dropping an unregistered table
// is an error so callers can report typos.
func (r *Registry) DropTable(ctx context.Context, session core.SessionContext, table string) error {
	if session.TableSet == "" {
		return fmt.Errorf("%w: run `use <name>` first", core.ErrNoTableSet)
	}
	tableID := session.TableID(table)
	_, ok, err := r.decls.GetDeclaration(ctx, tableID)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownTable, table)
	}
	if err := r.decls.DeleteDeclaration(ctx, tableID); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	r.logger.Info("table dropped", "table", tableID)
	return nil
}

// DescribeTable returns the parsed schema for a table. A registered
// schemaless table comes back as an empty schema.
func (r *Registry) DescribeTable(ctx context.Context, session core.SessionContext, table string) (core.Schema, error) {
	if session.TableSet == "" {
		return core.Schema{}, fmt.Errorf("%w: run `use <name>` first", core.ErrNoTableSet)
	}
	tableID := session.TableID(table)
	decl, ok, err := r.decls.GetDeclaration(ctx, tableID)
	if err != nil {
		return core.Schema{}, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	if !ok {
		return core.Schema{}, fmt.Errorf("%w: %s", core.ErrUnknownTable, table)
	}
	return sqlparse.ParseSchema(decl)
}

// ListTables returns the bare table names registered in the session's
// table-set.
func (r *Registry) ListTables(ctx context.Context, session core.SessionContext) ([]string, error) {
	if session.TableSet == "" {
		return nil, fmt.Errorf("%w: run `use <name>` first", core.ErrNoTableSet)
	}
	ids, err := r.decls.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	prefix := session.TenantID + "/" + session.TableSet + "/"
	var names []string
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			names = append(names, strings.TrimPrefix(id, prefix))
		}
	}
	return names, nil
}
