package errors

import "net/http"

// Common error codes used across domains
const (
	CodeNotFound       Code = "not_found"
	CodeAlreadyExists  Code = "already_exists"
	CodeInvalidRequest Code = "invalid_request"
	CodeInternal       Code = "internal_error"
	CodeUnavailable    Code = "unavailable"
)

// ============================================================================
// Config errors — malformed or semantically invalid build configuration
// ============================================================================

var (
	// ErrConfigInvalid is returned for graph cycles, unknown source
	// references, missing required fields, or malformed breakpoints.
	ErrConfigInvalid = New(DomainConfig, "invalid", http.StatusBadRequest,
		"invalid configuration")

	// ErrConfigNotFound is returned when the named config file does not exist.
	ErrConfigNotFound = New(DomainConfig, CodeNotFound, http.StatusNotFound,
		"configuration file not found")
)

// ============================================================================
// Item store errors
// ============================================================================

var (
	// ErrItemConflict is returned when two different items claim the same
	// destination path.
	ErrItemConflict = New(DomainItem, "conflict", http.StatusConflict,
		"destination already claimed by a different item")

	// ErrItemMissingParent is returned when an item's parent directory is
	// not present in the store.
	ErrItemMissingParent = New(DomainItem, "missing_parent", http.StatusBadRequest,
		"parent directory not present in item store")
)

// ============================================================================
// ELF / binary resolution errors (C1)
// ============================================================================

var (
	// ErrBinaryMissing is returned when an executable is not found under
	// any search directory.
	ErrBinaryMissing = New(DomainELF, "binary_missing", http.StatusNotFound,
		"executable not found")

	// ErrLibraryMissing is returned when a library is not found, or no
	// ELF-compatible candidate exists.
	ErrLibraryMissing = New(DomainELF, "library_missing", http.StatusNotFound,
		"library not found")

	// ErrELFDependencyMissing is returned when a DT_NEEDED entry could not
	// be resolved against the search path.
	ErrELFDependencyMissing = New(DomainELF, "dependency_missing", http.StatusNotFound,
		"ELF dependency could not be resolved")

	// ErrKmodMissing is returned when a kernel module is not found for the
	// target kernel release.
	ErrKmodMissing = New(DomainELF, "kmod_missing", http.StatusNotFound,
		"kernel module not found")
)

// ============================================================================
// DataSource graph errors (C4)
// ============================================================================

var (
	// ErrGraphInvariantBroken indicates an attempted unload of a node that
	// is not loaded, is final, or is still referenced. This is always a
	// programming error in the emission driver, never a user error.
	ErrGraphInvariantBroken = New(DomainGraph, "invariant_broken", http.StatusInternalServerError,
		"graph invariant violated")
)

// ============================================================================
// External process errors
// ============================================================================

var (
	// ErrExternalToolFailed is returned when a required child process
	// (cpio, gen_init_cpio, loadkeys, modinfo, busybox) exits non-zero.
	ErrExternalToolFailed = New(DomainExec, "tool_failed", http.StatusInternalServerError,
		"external tool exited with a non-zero status")
)

// ============================================================================
// Host filesystem errors
// ============================================================================

var (
	// ErrIOFailure is returned for host filesystem errors during
	// read/hash/copy/write.
	ErrIOFailure = New(DomainIO, "failure", http.StatusInternalServerError,
		"host filesystem operation failed")
)

// ============================================================================
// Internal errors
// ============================================================================

var (
	// ErrInternal is a generic internal error, used where no more specific
	// domain applies.
	ErrInternal = New(DomainInternal, CodeInternal, http.StatusInternalServerError,
		"internal error")
)
