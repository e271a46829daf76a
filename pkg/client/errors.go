package client

// ErrorKind is the machine-readable failure classification.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindUnreachable     ErrorKind = "unreachable"
	KindQuotaExceeded   ErrorKind = "quota_exceeded"
	KindBackend         ErrorKind = "backend"
)

// Stable user-presentable messages. The adapter never surfaces raw
// transport exception shapes; callers always get one flat string.
const (
	msgUnauthenticated = "Authentication required. Please login to use this tool."
	msgUnreachable     = "Cannot reach the analysis backend. Check the deployment and run the health probe (GET /analyze)."
	msgQuotaExceeded   = "Quota Exceeded. You have reached your analysis limit. Please contact the administrator."
	msgGenericFailure  = "Failed to analyze content."
)

// Error is the adapter's only failure type: a kind for machines and a flat
// human-readable message.
type Error struct {
	Kind    ErrorKind
	Status  int // HTTP status when one was received, else 0
	Message string
}

func (e *Error) Error() string { return e.Message }
