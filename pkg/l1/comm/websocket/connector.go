package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/robotalks/kl200/pkg/l1"
	"github.com/robotalks/kl200/pkg/l1/comm"
)

// Connector implements l1.Connector by dialing a Server directly.
// A Server hosts exactly one controller.
type Connector struct {
	URL    *url.URL
	Origin string
}

// NewConnector creates a Connector from ws://host:port/path.
func NewConnector(serverURL string) (*Connector, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	origin := url.URL{Host: u.Host}
	switch u.Scheme {
	case "ws":
		origin.Scheme = "http"
	case "wss":
		origin.Scheme = "https"
	default:
		return nil, fmt.Errorf("unsupported websocket scheme %q", u.Scheme)
	}
	if u.Path == "" {
		u.Path = DefaultPath
	}
	return &Connector{URL: u, Origin: origin.String()}, nil
}

// MetaURL is the URL of the controller info endpoint.
func (c *Connector) MetaURL() string {
	u := *c.URL
	u.Scheme = "http"
	if c.URL.Scheme == "wss" {
		u.Scheme = "https"
	}
	u.Path += MetaSuffix
	return u.String()
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.MetaURL(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discover %s: %s", c.MetaURL(), resp.Status)
	}
	var info l1.ControllerInfo
	if err = json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return []l1.ControllerInfo{info}, nil
}

// Connect implements Connector. ctx only bounds dialing. The connection
// lives until the Loop it's added to stops or it's closed. The ref is
// not checked against the served controller.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	config, err := websocket.NewConfig(c.URL.String(), c.Origin)
	if err != nil {
		return nil, err
	}
	ws, err := config.DialContext(ctx)
	if err != nil {
		return nil, err
	}
	conn := &ControllerConn{Conn: ws}
	conn.Init(New(ws))
	return conn, nil
}

// ControllerConn implements l1.ControllerConn over websocket.
type ControllerConn struct {
	comm.ControllerConn
	Conn *websocket.Conn
}
