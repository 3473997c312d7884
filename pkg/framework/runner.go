package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Wait when stop is requested twice.
var ErrForcedExit = errors.New("forced exit")

// NamedRun gives runnable a name used in logs and errors.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{Runnable: runnable, name: name}
}

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string { return r.name }

// RunError is the failure of a single Runnable.
type RunError struct {
	Name string
	Err  error
}

func (e *RunError) Error() string { return e.Name + ": " + e.Err.Error() }

// Unwrap returns the original error.
func (e *RunError) Unwrap() error { return e.Err }

// Runner spawns Runnables on goroutines and collects what they return.
type Runner struct {
	Context context.Context

	results chan *RunError
	forced  chan struct{}
	running int
	count   int
}

// NewRunner creates a Runner on a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a Runner on ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{
		Context: ctx,
		results: make(chan *RunError, 1),
		forced:  make(chan struct{}),
	}
}

// HandleSignals cancels the context on SIGINT or SIGTERM. A second
// signal makes Wait give up on Runnables not stopped yet.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.Context)
	r.Context = ctx
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		glog.Infof("%v received, stopping", sig)
		cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.forced)
	}()
	return r
}

// Go starts runnables.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		name := fmt.Sprintf("#%d", r.count)
		if named, ok := runnable.(Named); ok {
			name = named.Name()
		}
		r.count++
		r.running++
		go r.run(name, runnable)
	}
	return r
}

func (r *Runner) run(name string, runnable Runnable) {
	glog.V(4).Infof("runner %s started", name)
	var res *RunError
	if err := runnable.Run(r.Context); err != nil {
		res = &RunError{Name: name, Err: err}
	}
	glog.V(4).Infof("runner %s stopped: %v", name, res)
	r.results <- res
}

// next receives the result of one stopped Runnable. A nil error means
// the Runnable stopped cleanly or was canceled.
func (r *Runner) next(res *RunError) error {
	r.running--
	if res == nil || errors.Is(res.Err, context.Canceled) {
		return nil
	}
	return res
}

// Wait blocks until all Runnables stop and aggregates their failures.
// context.Canceled is not a failure.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for r.running > 0 {
		select {
		case <-r.forced:
			return ErrForcedExit
		case res := <-r.results:
			errs.Add(r.next(res))
		}
	}
	return errs.Aggregate()
}

// RunWithContextCancel runs fn which can't watch a context. onCancel is
// invoked once ctx is done and must make fn return.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}
	if onCancel != nil {
		onCancel()
	}
	<-done
	return ctx.Err()
}

// RunWithContextCloser is RunWithContextCancel closing closer on cancel.
// closer is always closed once when fn returns.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	closed := false
	err := RunWithContextCancel(ctx, func() {
		closed = true
		closer.Close()
	}, fn)
	if !closed {
		closer.Close()
	}
	return err
}
