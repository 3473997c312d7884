package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/l1"
	"github.com/robotalks/kl200/pkg/l1/comm"
)

// Server is an l1.Registrar accepting websocket clients. Events are
// broadcast to all clients, and commands from any client are posted to
// the Loop like other registrars.
type Server struct {
	Addr string
	Path string
	Info l1.ControllerInfo

	ctx     context.Context
	clients   map[*comm.Registrar]struct{}
	lock      sync.Mutex
	ready     chan struct{}
	readyOnce sync.Once
	listenOn  net.Addr
}

// DefaultPath is the default HTTP path of the websocket endpoint.
const DefaultPath = "/l1"

// MetaSuffix is appended to Path for the controller info endpoint.
const MetaSuffix = "/meta"

// NewServer creates a Server listening on addr.
func NewServer(addr string) *Server {
	return &Server{
		Addr:    addr,
		Path:    DefaultPath,
		clients: make(map[*comm.Registrar]struct{}),
		ready:   make(chan struct{}),
	}
}

// SendEvent implements Registrar.
func (s *Server) SendEvent(ctx context.Context, msg fx.Message) error {
	s.lock.Lock()
	clients := make([]*comm.Registrar, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.lock.Unlock()
	for _, c := range clients {
		if err := c.SendEvent(ctx, msg); err != nil {
			glog.V(2).Infof("websocket client dropped: %v", err)
			s.remove(c)
			c.Close()
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.clients)
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(s)
}

// Handler returns the websocket handler. It can only serve clients
// after Run started.
func (s *Server) Handler() http.Handler {
	return websocket.Handler(s.serveConn)
}

// MetaHandler serves Info as JSON.
func (s *Server) MetaHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&s.Info)
	})
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	s.start(ctx)
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.lock.Lock()
	s.listenOn = ln.Addr()
	s.lock.Unlock()
	mux := http.NewServeMux()
	mux.Handle(s.Path, s.Handler())
	mux.Handle(s.Path+MetaSuffix, s.MetaHandler())
	server := &http.Server{Handler: mux}
	glog.Infof("websocket serving on %s%s", ln.Addr(), s.Path)
	// hijacked websocket connections outlive server.Close.
	defer s.closeClients()
	return fx.RunWithContextCloser(ctx, server, func() error {
		if err := server.Serve(ln); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

// ListenAddr returns the address Run is listening on, nil before that.
func (s *Server) ListenAddr() net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.listenOn
}

// start lets clients be served with ctx. Only the first call counts.
func (s *Server) start(ctx context.Context) {
	s.readyOnce.Do(func() {
		s.ctx = ctx
		close(s.ready)
	})
}

func (s *Server) serveConn(conn *websocket.Conn) {
	<-s.ready
	conn.PayloadType = websocket.BinaryFrame
	client := &comm.Registrar{}
	client.Init(New(conn))
	s.lock.Lock()
	s.clients[client] = struct{}{}
	s.lock.Unlock()
	glog.V(2).Infof("websocket client %s connected", conn.Request().RemoteAddr)
	if err := client.Serve(s.ctx); err != nil {
		glog.V(2).Infof("websocket client %s: %v", conn.Request().RemoteAddr, err)
	}
	s.remove(client)
}

func (s *Server) closeClients() {
	s.lock.Lock()
	clients := s.clients
	s.clients = make(map[*comm.Registrar]struct{})
	s.lock.Unlock()
	for c := range clients {
		c.Close()
	}
}

func (s *Server) remove(client *comm.Registrar) {
	s.lock.Lock()
	delete(s.clients, client)
	s.lock.Unlock()
}
