// Package engine composes the parsers, validator, codec and uniqueness
// checker with the external stores to implement row insertion and selection.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chatql/chatql/internal/changefeed"
	"github.com/chatql/chatql/internal/core"
	"github.com/chatql/chatql/internal/sqlparse"
	"github.com/chatql/chatql/internal/unique"
)

// Options bound the engine's store interactions.
type Options struct {
	// ReadWindow is the maximum number of recent records fetched for a
	// select or a uniqueness scan.
	ReadWindow int

	// DisplayLimit caps how many rows a result set renders; the true match
	// count is reported separately.
	DisplayLimit int

	// StrictUniqueness makes a failed uniqueness read surface as an error
	// instead of failing open.
	StrictUniqueness bool
}

// DefaultOptions mirror the bounded windows the system ran with originally.
func DefaultOptions() Options {
	return Options{
		ReadWindow:   100,
		DisplayLimit: 20,
	}
}

// Engine executes inserts and selects against the configured stores. All of
// its computation is pure and synchronous; the only blocking points are the
// store calls, which take the caller's context.
type Engine struct {
	records core.RecordStore
	decls   core.DeclarationStore
	checker *unique.Checker
	feed    changefeed.Queue // optional; nil disables the change feed
	opts    Options
	logger  *slog.Logger
}

// New builds an engine. feed may be nil when no change feed is configured.
func New(records core.RecordStore, decls core.DeclarationStore, feed changefeed.Queue, opts Options, logger *slog.Logger) *Engine {
	if opts.ReadWindow <= 0 {
		opts.ReadWindow = DefaultOptions().ReadWindow
	}
	if opts.DisplayLimit <= 0 {
		opts.DisplayLimit = DefaultOptions().DisplayLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		records: records,
		decls:   decls,
		checker: unique.NewChecker(records, opts.ReadWindow, opts.StrictUniqueness, logger),
		feed:    feed,
		opts:    opts,
		logger:  logger,
	}
}

// loadSchema fetches a table's stored declaration and parses it, normalizing
// the legacy colon form first. A registered table with an empty declaration
// comes back as an empty schema.
func (e *Engine) loadSchema(ctx context.Context, session core.SessionContext, table string) (core.Schema, string, error) {
	if session.TableSet == "" {
		return nil, "", fmt.Errorf("%w: select a table-set first", core.ErrNoTableSet)
	}

	tableID := session.TableID(table)
	declaration, ok, err := e.decls.GetDeclaration(ctx, tableID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading declaration for %s: %v", core.ErrStoreUnavailable, tableID, err)
	}
	if !ok {
		return nil, "", fmt.Errorf("%w: table %q does not exist in table-set %q", core.ErrUnknownTable, table, session.TableSet)
	}

	schema, err := sqlparse.ParseSchema(declaration)
	if err != nil {
		return nil, "", fmt.Errorf("stored declaration for %q is unreadable: %w", table, err)
	}
	return schema, tableID, nil
}
