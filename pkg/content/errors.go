package content

// StoreError represents a domain error from content store operations.
//
// These are business logic errors (path conflict, permission denied, etc.)
// as opposed to infrastructure errors (disk failure, corrupted database).
// Callers branch on Code; Message and Path are for logs and error reporting.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the content path related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a content store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested directory/page/revision doesn't exist.
	// Terminal for the caller, never worth a retry.
	ErrNotFound ErrorCode = iota

	// ErrPathConflict indicates a create/rename/move would violate tree
	// invariants: a sibling already owns the target path or slug, or a move
	// would make a directory its own ancestor. The transaction is rolled
	// back; no partial state is ever visible.
	ErrPathConflict

	// ErrPermissionDenied indicates the caller's effective level is
	// insufficient for the requested operation.
	ErrPermissionDenied

	// ErrRedirectCycle indicates a redirect resolved back into the redirect
	// table. Structurally impossible with id-based redirect targets; if ever
	// observed it is an internal consistency bug and must be logged, not
	// silently looped.
	ErrRedirectCycle

	// ErrAlreadyExists indicates an entity with the same identity already
	// exists (duplicate user id, second system-owner claim, etc.).
	ErrAlreadyExists

	// ErrInvalidArgument indicates invalid parameters were provided.
	// Examples: empty title, unknown visibility, zero revision number.
	ErrInvalidArgument

	// ErrConflict indicates a concurrent writer won a conflicting
	// transaction. Safe to retry at the caller's discretion, except for
	// revision creation which requires caller-side deduplication first.
	ErrConflict

	// ErrIO indicates an error reading or writing the backing store.
	ErrIO
)

// IsNotFound reports whether err is a StoreError with code ErrNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, ErrNotFound)
}

// IsPathConflict reports whether err is a StoreError with code ErrPathConflict.
func IsPathConflict(err error) bool {
	return hasCode(err, ErrPathConflict)
}

// IsPermissionDenied reports whether err is a StoreError with code ErrPermissionDenied.
func IsPermissionDenied(err error) bool {
	return hasCode(err, ErrPermissionDenied)
}

func hasCode(err error, code ErrorCode) bool {
	se, ok := err.(*StoreError)
	return ok && se.Code == code
}
