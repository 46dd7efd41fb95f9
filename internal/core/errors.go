package core

import "errors"

// Error kinds produced by the engine. Every validation failure wraps one of
// these sentinels so callers can classify errors with errors.Is while the
// message carries a human-readable explanation plus a corrective example.
// None of them is fatal: every failure path returns a value.
var (
	// ErrSchemaSyntax covers malformed declarations: bad segment shape,
	// unknown type, bad or forbidden size.
	ErrSchemaSyntax = errors.New("schema syntax error")

	// ErrDuplicateColumn is a declaration reusing a column name.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrLiteralSyntax covers unparseable literals, unterminated strings
	// and empty value lists.
	ErrLiteralSyntax = errors.New("literal syntax error")

	// ErrArityMismatch is a row whose length differs from the schema's.
	ErrArityMismatch = errors.New("value count mismatch")

	// ErrNullNotAllowed is a NULL in a NOT NULL column.
	ErrNullNotAllowed = errors.New("null not allowed")

	// ErrTypeMismatch is a value whose kind does not fit its column type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrStringTooLong is a string exceeding its column's size limit.
	ErrStringTooLong = errors.New("string too long")

	// ErrPrimaryKeyViolation is an insert whose primary-key values collide
	// with an already stored row.
	ErrPrimaryKeyViolation = errors.New("primary key violation")

	// ErrUnknownColumn is a projection or filter referencing a column the
	// schema does not define.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrUnknownTable is an operation against a table that is not
	// registered in the catalog.
	ErrUnknownTable = errors.New("unknown table")

	// ErrNoTableSet is an operation issued before `use` selected a
	// table-set for the session.
	ErrNoTableSet = errors.New("no table-set selected")

	// ErrStoreUnavailable wraps collaborator failures. During uniqueness
	// reads it is recovered as fail-open; everywhere else it surfaces to
	// the caller.
	ErrStoreUnavailable = errors.New("store unavailable")
)
