package mqtt

import (
	"context"
	"io"

	"github.com/robotalks/kl200/pkg/l1"
)

// ReadWriter implements PacketReadWriter over a pair of topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{Queue: q, packetCh: make(chan []byte, 16)}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// CommandTopic is where commands are sent to the controller.
func CommandTopic(ref l1.ControllerRef) string { return ref.Name() + "/cmd" }

// MessageTopic is where replies and events are published by the controller.
func MessageTopic(ref l1.ControllerRef) string { return ref.Name() + "/msg" }

// MetaTopic holds retained controller metadata.
func MetaTopic(ref l1.ControllerRef) string { return ref.Name() + "/meta" }

// ForConnector subscribes MessageTopic and publishes to CommandTopic.
func (p *ReadWriter) ForConnector(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(MessageTopic(ref), CommandTopic(ref))
}

// ForController subscribes CommandTopic and publishes to MessageTopic.
func (p *ReadWriter) ForController(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(CommandTopic(ref), MessageTopic(ref))
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	pkt, ok := <-p.packetCh
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	<-ctx.Done()
	sub.Close()
	close(p.packetCh)
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	p.packetCh <- payload
}
