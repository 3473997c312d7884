package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())

	err1, err2 := errors.New("e1"), errors.New("e2")
	require.EqualError(t, (&AggregatedError{}).Add(err1).Aggregate(), "e1")
	err := errs.Add(err1, nil, err2).Aggregate()
	require.EqualError(t, err, "multiple errors:\n  e1\n  e2")
	require.True(t, errors.Is(err, err2))
}

func TestRunnerWait(t *testing.T) {
	failure := errors.New("failed")
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunnerWith(ctx).Go(
		NamedRun("canceled", runFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		runFunc(func(context.Context) error { return failure }),
	)
	cancel()
	err := runner.Wait()
	require.True(t, errors.Is(err, failure))
	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	require.Equal(t, "#1", runErr.Name)
	require.NoError(t, NewRunner().Wait())
}

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunWithContextCloser(t *testing.T) {
	unblock := make(chan struct{})
	var closed int
	closer := closerFunc(func() error {
		closed++
		close(unblock)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closed)

	closed = 0
	err = RunWithContextCloser(context.Background(), closerFunc(func() error {
		closed++
		return nil
	}), func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, closed)
}

func TestLoopRunOnce(t *testing.T) {
	loop := NewLoop()
	var order []int
	var seen []int
	loop.AddController(PrLvPostProc, ControlFunc(func(cc ControlContext) error {
		order = append(order, cc.PriorityLevel())
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			seen = append(seen, mctx.CurrentMessage().(*testMsg).val)
		}))
		return nil
	}))
	loop.AddController(PrLvSense, ControlFunc(func(cc ControlContext) error {
		order = append(order, cc.PriorityLevel())
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			if mctx.CurrentMessage().(*testMsg).val == 1 {
				mctx.MessageTaken()
			}
		}))
		return errors.New("logged only")
	}))

	loop.PostMessage(&testMsg{val: 1})
	loop.PostMessage(&testMsg{val: 2})
	loop.RunOnce(context.Background())
	require.Equal(t, []int{PrLvSense, PrLvPostProc}, order)
	require.Equal(t, []int{2}, seen)

	seen = nil
	loop.RunOnce(context.Background())
	require.Empty(t, seen)
}

func TestLoopRun(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Hour
	done := make(chan struct{})
	loop.AddRunnable(runFunc(func(ctx context.Context) error {
		ctl := LoopCtlFrom(ctx)
		ctl.PostMessage(&testMsg{val: 7})
		ctl.TriggerNext()
		<-ctx.Done()
		return ctx.Err()
	}))
	loop.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			if mctx.CurrentMessage().(*testMsg).val == 7 {
				mctx.MessageTaken()
				close(done)
			}
		}))
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("message not processed")
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

func TestLoopRunnerFailure(t *testing.T) {
	failure := errors.New("runner failed")
	loop := NewLoop().AddRunnable(runFunc(func(context.Context) error { return failure }))
	err := loop.Run(context.Background())
	require.True(t, errors.Is(err, failure))
	require.EqualError(t, err, "#0: runner failed")
}
