package queue

import "context"

// Job defines a queue job handler.
type Job interface {
	// Name returns the unique identifier of the job.
	Name() string

	// Type returns the message type the job handles.
	Type() string

	// Handle processes one payload. Returned errors are retried up to RetryLimit.
	Handle(ctx context.Context, payload interface{}) error
}
