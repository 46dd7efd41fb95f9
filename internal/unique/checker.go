// Package unique enforces primary-key uniqueness against previously stored
// rows of a table.
package unique

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chatql/chatql/internal/codec"
	"github.com/chatql/chatql/internal/core"
)

// Checker scans the most recent records of a table for primary-key
// collisions. The scan window is bounded: only the last Window records are
// consulted, not the full history, so the check is best-effort under heavy
// append volume and concurrent writers.
type Checker struct {
	store core.RecordStore

	// Window is how many recent records to scan. Zero falls back to
	// DefaultWindow.
	Window int

	// Strict controls what happens when the existing records cannot be
	// read. False (the default) fails open: the insert is allowed rather
	// than blocked on an infrastructure error, trading strict consistency
	// for availability. True surfaces the store error instead.
	Strict bool

	logger *slog.Logger
}

// DefaultWindow is the recency window scanned when none is configured.
const DefaultWindow = 100

// NewChecker builds a checker over the given record store.
func NewChecker(store core.RecordStore, window int, strict bool, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{store: store, Window: window, Strict: strict, logger: logger}
}

// Check returns an ErrPrimaryKeyViolation when the candidate row's
// primary-key values collide with a stored row. Tables without a primary key
// pass trivially. Stored records that fail to decode are skipped.
func (c *Checker) Check(ctx context.Context, tableID string, row core.Row, schema core.Schema) error {
	pk := schema.PrimaryKeyIndexes()
	if len(pk) == 0 {
		return nil
	}

	window := c.Window
	if window <= 0 {
		window = DefaultWindow
	}

	records, err := c.store.ReadRecent(ctx, tableID, window)
	if err != nil {
		if c.Strict {
			return fmt.Errorf("%w: cannot verify primary-key uniqueness: %v", core.ErrStoreUnavailable, err)
		}
		// Fail open: allow the insert rather than block on a read failure.
		c.logger.Warn("uniqueness scan skipped, store read failed",
			"table", tableID, "error", err)
		return nil
	}

	for _, record := range records {
		stored, err := codec.Decode(record, schema)
		if err != nil {
			continue
		}
		if pkEqual(row, stored.Values, pk) {
			return fmt.Errorf(
				"%w: a row with %s already exists in the table",
				core.ErrPrimaryKeyViolation, describeKey(row, schema, pk))
		}
	}
	return nil
}

// pkEqual compares the primary-key positions of two rows. Integers, booleans
// and strings compare exactly; floats compare within FloatEpsilon.
func pkEqual(a, b core.Row, pk []int) bool {
	for _, i := range pk {
		if i >= len(a) || i >= len(b) {
			return false
		}
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func describeKey(row core.Row, schema core.Schema, pk []int) string {
	parts := make([]string, 0, len(pk))
	for _, i := range pk {
		if i < len(schema) && i < len(row) {
			parts = append(parts, schema[i].Name+" = "+row[i].Literal())
		}
	}
	return strings.Join(parts, ", ")
}
