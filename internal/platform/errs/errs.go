package errs

import "fmt"

// Kind categorizes application errors for HTTP status mapping.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed (HTTP 400).
	InvalidInput
	// UnreachableTarget indicates the reachability probe failed (HTTP 400).
	UnreachableTarget
	// FetchFailure indicates the main document could not be retrieved (HTTP 500).
	FetchFailure
	// EvaluationFailure indicates a lint engine failed on the content (HTTP 500).
	EvaluationFailure
	// Timeout indicates the analysis ran out of time (HTTP 500).
	Timeout
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case UnreachableTarget:
		return "unreachable_target"
	case FetchFailure:
		return "fetch_failure"
	case EvaluationFailure:
		return "evaluation_failure"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the target site
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}
