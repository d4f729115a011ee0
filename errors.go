package crate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnsupportedFunctionality indicates a nested, unkeyed or single-value
	// container was requested, or a second container from one coordinator.
	// It is raised by panic, never returned.
	ErrUnsupportedFunctionality = errors.New("this functionality is currently unsupported")

	// ErrSystemFieldsDecode indicates the system-fields blob could not be processed.
	ErrSystemFieldsDecode = errors.New("failed to process " + SystemFieldsKey)

	// ErrUnsupportedValue indicates a field value has no record representation.
	ErrUnsupportedValue = errors.New("unsupported value for key")

	// ErrNilRecord indicates a record factory returned nil.
	ErrNilRecord = errors.New("record factory returned nil")

	// ErrKeyNotFound indicates the record has no value for a required key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrTypeMismatch indicates the stored value cannot become the requested type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValueNotFound indicates a stored value could not be resolved.
	ErrValueNotFound = errors.New("value not found")

	// ErrInvalidTarget indicates a decode destination is not a non-nil pointer.
	ErrInvalidTarget = errors.New("invalid decode target")

	// ErrInvalidValue indicates a value outside the record value kinds was set on a record.
	ErrInvalidValue = errors.New("invalid record value")

	// ErrInvalidArchive indicates a system-fields blob is malformed.
	ErrInvalidArchive = errors.New("invalid system fields archive")

	// ErrCodecMismatch indicates a blob was written with a different codec.
	ErrCodecMismatch = errors.New("archive codec mismatch")

	// ErrChecksumMismatch indicates a blob failed its integrity check.
	ErrChecksumMismatch = errors.New("archive checksum mismatch")

	// ErrSealed indicates a sealed blob was read without the matching sealer.
	ErrSealed = errors.New("archive is sealed")
)

// EncodingError reports a failure to encode a value into a record.
type EncodingError struct {
	Err    error    // Underlying sentinel error
	Key    string   // Field key that failed, if any
	Path   []string // Coding path at the failure
	Detail string   // Human readable detail
	Cause  error    // Original error from the archiver, if any
}

func (e *EncodingError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (path %s)", strings.Join(e.Path, "."))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *EncodingError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// DecodingError reports a failure to decode a record into a value.
type DecodingError struct {
	Err    error        // Underlying sentinel error
	Key    string       // Field key that failed, if any
	Type   reflect.Type // Requested type, if known
	Path   []string     // Coding path at the failure
	Detail string       // Human readable detail
	Cause  error        // Original error, if any
}

func (e *DecodingError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Type != nil {
		fmt.Fprintf(&b, " for %s", e.Type)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " key %q", e.Key)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (path %s)", strings.Join(e.Path, "."))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *DecodingError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// ArchiveError reports a failure to archive or unarchive system fields.
type ArchiveError struct {
	Err   error  // Underlying sentinel error
	Op    string // "archive" or "unarchive"
	Cause error  // Original error from the codec or sealer
}

func (e *ArchiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Err.Error(), e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *ArchiveError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// newArchiveError creates an ArchiveError.
func newArchiveError(sentinel error, op string, cause error) error {
	return &ArchiveError{
		Err:   sentinel,
		Op:    op,
		Cause: cause,
	}
}

// copyPath detaches a coding path from the traversal that built it.
func copyPath(path []string, key ...string) []string {
	out := make([]string, 0, len(path)+len(key))
	out = append(out, path...)
	return append(out, key...)
}

// unsupported panics with a contract violation. Recovering callers can
// test the value with errors.Is(v.(error), ErrUnsupportedFunctionality).
func unsupported(what string, path []string) {
	panic(&EncodingError{
		Err:    ErrUnsupportedFunctionality,
		Path:   copyPath(path),
		Detail: what,
	})
}

// unsupportedDecode is the decode-side counterpart of unsupported.
func unsupportedDecode(what string, path []string) {
	panic(&DecodingError{
		Err:    ErrUnsupportedFunctionality,
		Path:   copyPath(path),
		Detail: what,
	})
}
