// Package websocket exposes L1 messages to websocket clients.
package websocket

import (
	"context"

	"golang.org/x/net/websocket"
)

// ReadWriter implements PacketReadWriter, one binary frame per packet.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Run implements Runnable. It closes the connection when ctx is done.
func (p *ReadWriter) Run(ctx context.Context) error {
	<-ctx.Done()
	p.Close()
	return ctx.Err()
}
