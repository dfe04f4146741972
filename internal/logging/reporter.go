package logging

import (
	"context"
	"sync"
)

// Reporter receives failures that must never reach the caller, such as a
// remote call that was converted into a queued retry.
// CaptureException must not block and must not fail.
type Reporter interface {
	CaptureException(ctx context.Context, err error, args ...any)
}

// LogReporter reports exceptions as error-level log records.
type LogReporter struct {
	logger Logger
}

func NewLogReporter(l Logger) *LogReporter {
	return &LogReporter{logger: l.With("component", "reporter")}
}

func (r *LogReporter) CaptureException(ctx context.Context, err error, args ...any) {
	if err == nil {
		return
	}
	r.logger.Error(ctx, "captured exception", append([]any{"error", err.Error()}, args...)...)
}

// Recorder keeps captured errors in memory. Intended for tests.
type Recorder struct {
	mu     sync.Mutex
	errors []error
}

func (r *Recorder) CaptureException(_ context.Context, err error, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

// Errors returns a copy of everything captured so far.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}
