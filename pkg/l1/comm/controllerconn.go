package comm

import (
	"context"
	"errors"
	"sync"
	"time"

	fx "github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/l1"
	"github.com/robotalks/kl200/pkg/l1/msgs"
)

// ErrConnClosed fails commands still waiting when the link goes away.
var ErrConnClosed = errors.New("controller connection closed")

// DefaultCommandExpiration is how long to wait for a reply.
const DefaultCommandExpiration = 1 * time.Second

// ControllerConn implements l1.ControllerConn over a Pipe.
// Events received are posted to the Loop, replies complete the pending
// command with the same sequence.
type ControllerConn struct {
	Expiration time.Duration

	pipe    Pipe
	lock    sync.Mutex
	seq     uint32
	pending map[uint32]*commandFuture
	closed  bool
}

// Init initializes ControllerConn with defaults.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.pending = make(map[uint32]*commandFuture)
}

// DoCommand implements ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	f := &commandFuture{result: make(chan l1.Result, 1)}
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		f.complete(l1.Result{Err: ErrConnClosed})
		return f
	}
	if c.seq++; c.seq == 0 {
		c.seq++
	}
	f.seq, f.expireAt = c.seq, time.Now().Add(c.Expiration)
	c.pending[f.seq] = f
	c.lock.Unlock()

	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		if pending := c.take(f.seq); pending != nil {
			pending.complete(l1.Result{Err: err})
		}
	}
	return f
}

// Pending returns the number of commands waiting for replies.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pending)
}

// Close closes the link and fails all pending commands.
func (c *ControllerConn) Close() error {
	err := c.pipe.Close()
	c.failAll()
	return err
}

// Run implements Runnable. It runs the pipe and fails pending commands
// once the pipe stops.
func (c *ControllerConn) Run(ctx context.Context) error {
	defer c.failAll()
	return c.pipe.Run(ctx)
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	if adder, ok := c.pipe.ReadWriter.(fx.LoopAdder); ok {
		l.Add(adder)
	} else if runnable, ok := c.pipe.ReadWriter.(fx.Runnable); ok {
		l.AddRunnable(runnable)
	}
	l.AddRunnable(c)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

func (c *ControllerConn) take(seq uint32) *commandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	f := c.pending[seq]
	delete(c.pending, seq)
	return f
}

func (c *ControllerConn) failAll() {
	c.lock.Lock()
	pending := c.pending
	c.pending, c.closed = make(map[uint32]*commandFuture), true
	c.lock.Unlock()
	for _, f := range pending {
		f.complete(l1.Result{Err: ErrConnClosed})
	}
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	// replies to expired or unknown commands are dropped.
	if f := c.take(typed.Sequence); f != nil {
		result := l1.Result{Msg: msg}
		if cmdErr, ok := msg.(*msgs.CommandErr); ok {
			result.Err = cmdErr
		}
		f.complete(result)
	}
	return nil
}

func (c *ControllerConn) purgeExpired(cc fx.ControlContext) error {
	now := cc.Time()
	var expired []*commandFuture
	c.lock.Lock()
	for seq, f := range c.pending {
		if !f.expireAt.After(now) {
			expired = append(expired, f)
			delete(c.pending, seq)
		}
	}
	c.lock.Unlock()
	for _, f := range expired {
		f.complete(l1.Result{Err: context.DeadlineExceeded})
	}
	return nil
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	result   chan l1.Result
}

func (f *commandFuture) ResultChan() <-chan l1.Result {
	return f.result
}

func (f *commandFuture) complete(res l1.Result) {
	f.result <- res
	close(f.result)
}
