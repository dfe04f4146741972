package refresh

import "context"

// Task is a running or finished refresh.
type Task struct {
	done   chan struct{}
	err    error
	cancel context.CancelFunc
}

func newTask(cancel context.CancelFunc) *Task {
	return &Task{done: make(chan struct{}), cancel: cancel}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Done is closed when the refresh finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the refresh finished and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Err returns the error of a finished refresh, nil while it runs.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

func (t *Task) Cancel() { t.cancel() }

// Failed returns a finished task that carries err.
func Failed(err error) *Task {
	t := newTask(func() {})
	t.finish(err)
	return t
}
