// Package errs defines the ingest pipeline's error kinds. Every fatal
// condition described by the system (bad root, missing scenery, a broken
// parse, a store failure) is surfaced as an *IngestError so callers can
// branch on Kind with errors.As instead of matching strings.
package errs

import "fmt"

// Kind identifies which class of failure an IngestError represents.
type Kind int

const (
	// KindInvalidRoot means xp_root_path is not a directory.
	KindInvalidRoot Kind = iota
	// KindMissingGlobalScenery means the base scenery subtree is absent.
	KindMissingGlobalScenery
	// KindFilesystemError means an OS error occurred during traversal.
	KindFilesystemError
	// KindReaderError means a file could not be opened or read.
	KindReaderError
	// KindParseError means a token failed to convert to its typed value.
	KindParseError
	// KindStoreError means the underlying database rejected an operation.
	KindStoreError
	// KindPreconditionError means a lifecycle method was called out of order.
	KindPreconditionError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRoot:
		return "invalid_root"
	case KindMissingGlobalScenery:
		return "missing_global_scenery"
	case KindFilesystemError:
		return "filesystem_error"
	case KindReaderError:
		return "reader_error"
	case KindParseError:
		return "parse_error"
	case KindStoreError:
		return "store_error"
	case KindPreconditionError:
		return "precondition_error"
	default:
		return "unknown"
	}
}

// IngestError is the single error type returned across package boundaries
// in the ingest pipeline. ParseError instances additionally carry the file,
// line number, raw line text and token list that produced the failure.
type IngestError struct {
	Kind    Kind
	Message string
	File    string
	Line    int
	RawLine string
	Tokens  []string
	Err     error
}

func (e *IngestError) Error() string {
	switch e.Kind {
	case KindParseError:
		return fmt.Sprintf("%s: %s:%d: %s (line=%q tokens=%v)", e.Kind, e.File, e.Line, e.Message, e.RawLine, e.Tokens)
	default:
		if e.Message != "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Message)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *IngestError) Unwrap() error { return e.Err }

// New builds a plain IngestError of the given kind with a message.
func New(kind Kind, msg string) *IngestError {
	return &IngestError{Kind: kind, Message: msg}
}

// Newf builds a plain IngestError with a formatted message.
func Newf(kind Kind, format string, args ...any) *IngestError {
	return &IngestError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an existing error to a Kind.
func Wrap(kind Kind, err error) *IngestError {
	if err == nil {
		return nil
	}
	return &IngestError{Kind: kind, Err: err}
}

// ParseErrorf builds a KindParseError carrying the file, line number, raw
// line and token list that triggered a conversion failure.
func ParseErrorf(file string, line int, rawLine string, tokens []string, cause error) *IngestError {
	return &IngestError{
		Kind:    KindParseError,
		Message: cause.Error(),
		File:    file,
		Line:    line,
		RawLine: rawLine,
		Tokens:  tokens,
		Err:     cause,
	}
}

// Is reports whether target is an *IngestError of the same Kind, so that
// errors.Is(err, errs.New(errs.KindStoreError, "")) matches any store
// error regardless of message or wrapped cause.
func (e *IngestError) Is(target error) bool {
	t, ok := target.(*IngestError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
