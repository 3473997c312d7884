package websocket

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/l1"
	"github.com/robotalks/kl200/pkg/l1/comm"
	"github.com/robotalks/kl200/pkg/l1/msgs"
)

type pingEvent struct {
	Value uint32 `protobuf:"varint,1,opt,name=value,proto3" json:"value,omitempty"`
}

const pingEventTypeID = msgs.GroupCustom | msgs.TypeIDKindEvent | 0x7001

func (m *pingEvent) NewMessage() fx.Message      { return &pingEvent{} }
func (m *pingEvent) TypeID() uint32              { return pingEventTypeID }
func (m *pingEvent) Serializable() proto.Message { return m }
func (m *pingEvent) ProtoMessage()               {}
func (m *pingEvent) Reset()                      { *m = pingEvent{} }
func (m *pingEvent) String() string              { return proto.CompactTextString(m) }

type pingCommand struct{}

const pingCommandTypeID = msgs.GroupCustom | 0x7001

func (m *pingCommand) NewMessage() fx.Message      { return &pingCommand{} }
func (m *pingCommand) TypeID() uint32              { return pingCommandTypeID }
func (m *pingCommand) Serializable() proto.Message { return m }
func (m *pingCommand) ProtoMessage()               {}
func (m *pingCommand) Reset()                      { *m = pingCommand{} }
func (m *pingCommand) String() string              { return proto.CompactTextString(m) }

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func init() {
	msgs.MessageTypes[pingEventTypeID] = (*pingEvent)(nil)
	msgs.MessageTypes[pingCommandTypeID] = (*pingCommand)(nil)
}

func receiveTyped(t *testing.T, conn *websocket.Conn) (*msgs.Typed, fx.Message) {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var pkt []byte
	require.NoError(t, websocket.Message.Receive(conn, &pkt))
	typed, err := msgs.DecodeTyped(pkt)
	require.NoError(t, err)
	msg, err := typed.Decode()
	require.NoError(t, err)
	return typed, msg
}

// startServer runs s inside a loop which replies every command with
// "test reply".
func startServer(t *testing.T, s *Server) context.Context {
	loop := fx.NewLoop()
	loop.AddRunnable(runFunc(func(ctx context.Context) error {
		s.start(ctx)
		<-ctx.Done()
		return ctx.Err()
	}))
	loop.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			if cmd, ok := mctx.CurrentMessage().(*l1.CommandMsg); ok {
				mctx.MessageTaken()
				cmd.Command.Done(msgs.NewCommandErrFromMsg("test reply"))
			}
		}))
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)
	return ctx
}

func TestServer(t *testing.T) {
	s := NewServer("")
	ctx := startServer(t, s)

	httpServer := httptest.NewServer(s.Handler())
	defer httpServer.Close()
	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	conn, err := websocket.Dial(wsURL, "", httpServer.URL)
	require.NoError(t, err)
	defer conn.Close()

	// a command of unknown type is answered by the pipe itself.
	pkt, err := (&msgs.Typed{TypeID: 0x1234, Sequence: 5}).Encode()
	require.NoError(t, err)
	require.NoError(t, websocket.Message.Send(conn, pkt))
	typed, msg := receiveTyped(t, conn)
	require.Equal(t, uint32(5), typed.Sequence)
	require.EqualError(t, msg.(*msgs.CommandErr), "unknown type: 1234")

	// a known command is handled in the loop.
	typed, err = msgs.TypedFrom(&pingCommand{})
	require.NoError(t, err)
	typed.Sequence = 6
	pkt, err = typed.Encode()
	require.NoError(t, err)
	require.NoError(t, websocket.Message.Send(conn, pkt))
	typed, msg = receiveTyped(t, conn)
	require.Equal(t, uint32(6), typed.Sequence)
	require.EqualError(t, msg.(*msgs.CommandErr), "test reply")

	require.Equal(t, 1, s.ClientCount())
	require.NoError(t, s.SendEvent(ctx, &pingEvent{Value: 9}))
	typed, msg = receiveTyped(t, conn)
	require.True(t, typed.IsEvent())
	require.Equal(t, uint32(9), msg.(*pingEvent).Value)
}

func TestConnector(t *testing.T) {
	s := NewServer("")
	s.Info = l1.ControllerInfo{
		Ref:  l1.ControllerRef{Type: "kl200", ID: "test"},
		Meta: l1.ControllerMeta{Description: "test sensor"},
	}
	ctx := startServer(t, s)

	mux := http.NewServeMux()
	mux.Handle(DefaultPath, s.Handler())
	mux.Handle(DefaultPath+MetaSuffix, s.MetaHandler())
	httpServer := httptest.NewServer(mux)
	defer httpServer.Close()

	connector, err := NewConnector("ws" + strings.TrimPrefix(httpServer.URL, "http"))
	require.NoError(t, err)
	require.Equal(t, DefaultPath, connector.URL.Path)
	require.Equal(t, httpServer.URL+DefaultPath+MetaSuffix, connector.MetaURL())

	infos, err := connector.Discover(ctx)
	require.NoError(t, err)
	require.Equal(t, []l1.ControllerInfo{s.Info}, infos)

	conn, err := connector.Connect(ctx, s.Info.Ref)
	require.NoError(t, err)
	defer conn.(*ControllerConn).Conn.Close()
	go fx.NewLoop().Add(conn.(*ControllerConn)).Run(ctx)

	select {
	case res := <-conn.DoCommand(&pingCommand{}).ResultChan():
		require.EqualError(t, res.Err, "test reply")
	case <-time.After(time.Second):
		t.Fatal("command timeout")
	}

	_, err = NewConnector("http://localhost")
	require.Error(t, err)
}

func TestServerRunClosesClients(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- fx.NewLoop().Add(s).Run(ctx) }()

	var addr net.Addr
	require.Eventually(t, func() bool {
		addr = s.ListenAddr()
		return addr != nil
	}, time.Second, time.Millisecond)
	conn, err := websocket.Dial("ws://"+addr.String()+DefaultPath, "", "http://"+addr.String())
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, time.Millisecond)

	cancel()
	require.Equal(t, context.Canceled, <-done)
	require.Zero(t, s.ClientCount())
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var pkt []byte
	err = websocket.Message.Receive(conn, &pkt)
	require.Error(t, err)
	var netErr net.Error
	if errors.As(err, &netErr) {
		require.False(t, netErr.Timeout(), "client connection is still open")
	}

	// Run again with a stopped context returns instead of panicking.
	require.Equal(t, context.Canceled, s.Run(ctx))
}

func TestConnectorDialContext(t *testing.T) {
	s := NewServer("")
	ctx := startServer(t, s)
	httpServer := httptest.NewServer(s.Handler())
	defer httpServer.Close()
	connector, err := NewConnector("ws" + strings.TrimPrefix(httpServer.URL, "http") + DefaultPath)
	require.NoError(t, err)

	dialCtx, dialCancel := context.WithTimeout(ctx, time.Second)
	conn, err := connector.Connect(dialCtx, l1.ControllerRef{Type: "kl200", ID: "test"})
	dialCancel()
	require.NoError(t, err)

	loopCtx, loopCancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- fx.NewLoop().Add(conn.(*ControllerConn)).Run(loopCtx) }()

	select {
	case res := <-conn.DoCommand(&pingCommand{}).ResultChan():
		require.EqualError(t, res.Err, "test reply")
	case <-time.After(time.Second):
		t.Fatal("command timeout")
	}

	loopCancel()
	<-done
	res := <-conn.DoCommand(&pingCommand{}).ResultChan()
	require.Equal(t, comm.ErrConnClosed, res.Err)
}
