package sh

import (
	"context"

	fx "github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/l1"
	"github.com/robotalks/kl200/pkg/l1/msgs"
)

// EventQueueSize is the capacity of ConnLoop.Events.
const EventQueueSize = 64

// ConnLoop runs a loop around a controller connection in background.
// Events from the controller are queued in Events, and the oldest one
// is dropped when the queue is full.
type ConnLoop struct {
	Ref    l1.ControllerRef
	Conn   l1.ControllerConn
	Loop   *fx.Loop
	Events chan fx.Message

	cancel func()
}

// StartConnLoop connects ref and starts the loop.
func StartConnLoop(connector l1.Connector, ref l1.ControllerRef) (*ConnLoop, error) {
	ctx, cancel := context.WithCancel(context.Background())
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		cancel()
		return nil, err
	}
	l := &ConnLoop{
		Ref:    ref,
		Conn:   conn,
		Loop:   fx.NewLoop(),
		Events: make(chan fx.Message, EventQueueSize),
		cancel: cancel,
	}
	if adder, ok := conn.(fx.LoopAdder); ok {
		l.Loop.Add(adder)
	}
	l.Loop.AddController(fx.PrLvControl, l)
	go l.Loop.Run(ctx)
	return l, nil
}

// Stop stops the loop and the connection.
func (l *ConnLoop) Stop() {
	l.cancel()
}

// Control implements Controller.
func (l *ConnLoop) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		msg, ok := mctx.CurrentMessage().(msgs.SerializableMessage)
		if !ok || msg.TypeID()&msgs.TypeIDMaskKind != msgs.TypeIDKindEvent {
			return
		}
		mctx.MessageTaken()
		l.queue(msg)
	}))
	return nil
}

// DrainEvents discards queued events so readers only see new ones, and
// returns Events.
func (l *ConnLoop) DrainEvents() <-chan fx.Message {
	for {
		select {
		case <-l.Events:
		default:
			return l.Events
		}
	}
}

func (l *ConnLoop) queue(msg fx.Message) {
	for {
		select {
		case l.Events <- msg:
			return
		default:
		}
		select {
		case <-l.Events:
		default:
		}
	}
}
