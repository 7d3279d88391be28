package retrydb

// ErrorClassifier decides whether an error's message describes a transient
// (retryable) condition or a fatal one.
//
// Classification is deliberately text-based: real deployments see
// heterogeneous driver error text, and the catalogue of transient
// signatures is the one stable surface across drivers. Implementations
// must consider only the first line of the message; trailing lines are
// diagnostic noise (stack traces, statement previews) that could
// spuriously match.
//
// Implementations must be pure and side-effect free so that consumers can
// substitute an alternate dialect's signature set without touching the
// orchestrator.
type ErrorClassifier interface {
	// IsRetryable returns true if the message matches a known transient
	// failure signature. Empty or unrecognized messages are not retryable.
	IsRetryable(errText string) bool
}

// ClassifierFunc adapts a plain function to the ErrorClassifier interface.
type ClassifierFunc func(errText string) bool

// IsRetryable implements ErrorClassifier.
func (f ClassifierFunc) IsRetryable(errText string) bool { return f(errText) }
