package godb

import "fmt"

// GoDBErrorCode classifies the kind of failure a core operation can report:
// logical violations, I/O failures, malformed on-disk bytes, and the one
// error that must never be swallowed by a caller -- TransactionAbortedError.
type GoDBErrorCode int

const (
	// DbError covers logical violations: wrong schema, full page, deleting
	// a tuple that isn't there.
	DbError GoDBErrorCode = iota
	// TransactionAbortedError is raised by the buffer pool / lock manager.
	// It must propagate unchanged; the core never catches it.
	TransactionAbortedError
	// InvalidPageId is raised by HeapFile when a page number is out of range.
	InvalidPageId
	// PageReadError wraps an I/O failure encountered while reading a page.
	PageReadError
	// PageWriteError wraps an I/O failure encountered while writing a page.
	PageWriteError
	// FormatError indicates corrupt page bytes that failed to parse.
	FormatError
	// InvalidAggregateOp is a construction-time error for aggregators that
	// only support a subset of [AggOp].
	InvalidAggregateOp
	// AggregateError covers runtime aggregate failures, e.g. division by zero.
	AggregateError
	// NoSuchElementError is raised by next() when hasNext() is false.
	NoSuchElementError
)

func (c GoDBErrorCode) String() string {
	switch c {
	case DbError:
		return "DbError"
	case TransactionAbortedError:
		return "TransactionAbortedError"
	case InvalidPageId:
		return "InvalidPageId"
	case PageReadError:
		return "PageReadError"
	case PageWriteError:
		return "PageWriteError"
	case FormatError:
		return "FormatError"
	case InvalidAggregateOp:
		return "InvalidAggregateOp"
	case AggregateError:
		return "AggregateError"
	case NoSuchElementError:
		return "NoSuchElementError"
	default:
		return "UnknownError"
	}
}

// GoDBError is the single error type the core returns. Callers that need to
// branch on the failure kind should compare Code, not the error string.
type GoDBError struct {
	Code GoDBErrorCode
	Msg  string
}

func (e GoDBError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is reports whether target is a GoDBError with the same Code, letting
// errors.Is match on failure kind without callers also having to match
// the formatted Msg, which varies per call site.
func (e GoDBError) Is(target error) bool {
	other, ok := target.(GoDBError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// newErr is a small constructor used throughout the core to avoid repeating
// the struct literal shape at every call site.
func newErr(code GoDBErrorCode, format string, args ...any) GoDBError {
	return GoDBError{Code: code, Msg: fmt.Sprintf(format, args...)}
}
