// Package sh is the interactive shell talking to L1 controllers.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	fx "github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/l1"
	env "github.com/robotalks/kl200/pkg/l1/env/connector"
	"github.com/robotalks/kl200/pkg/l1/msgs"
)

// Shell wraps ishell with the current controller connection.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *env.Config
	Loop   *ConnLoop

	connector l1.Connector
}

// Timeouts
var (
	CommandTimeout  = 2 * time.Second
	DiscoverTimeout = 2 * time.Second
)

// ErrNotConnected is reported by commands requiring a connection.
var ErrNotConnected = fmt.Errorf("not connected")

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds registers commands, called in init of command packages.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Loop == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connector creates the connector on first use.
func (s *Shell) Connector() (l1.Connector, error) {
	if s.connector == nil {
		connector, err := s.Config.NewConnector()
		if err != nil {
			return nil, err
		}
		s.connector = connector
	}
	return s.connector, nil
}

// UseRegistry switches to another registry URL, the current connection
// is kept.
func (s *Shell) UseRegistry(registryURL string) {
	if registryURL != s.Config.RegistryURL {
		s.Config.RegistryURL = registryURL
		s.connector = nil
	}
}

// DiscoverControllers discovers controllers, sorted by name. A nil
// filter accepts all.
func (s *Shell) DiscoverControllers(filter func(l1.ControllerInfo) bool) ([]l1.ControllerInfo, error) {
	connector, err := s.Connector()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), DiscoverTimeout)
	defer cancel()
	infoList, err := connector.Discover(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]l1.ControllerInfo, 0, len(infoList))
	for _, info := range infoList {
		if filter == nil || filter(info) {
			items = append(items, info)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Ref.Name() < items[j].Ref.Name()
	})
	return items, nil
}

// SelectController discovers controllers and asks for a choice if more
// than one is found. It returns nil if nothing is discovered.
func (s *Shell) SelectController(filter func(l1.ControllerInfo) bool) (*l1.ControllerInfo, error) {
	infoList, err := s.DiscoverControllers(filter)
	if err != nil || len(infoList) == 0 {
		return nil, err
	}
	if len(infoList) == 1 {
		return &infoList[0], nil
	}
	if !s.Interactive {
		return nil, fmt.Errorf("%d controllers discovered in non-interactive mode", len(infoList))
	}
	items := make([]string, len(infoList))
	for n, info := range infoList {
		items[n] = FormatInfo(info)
	}
	index := s.Shell.MultiChoice(items, "Which one to connect?")
	if index < 0 {
		return nil, nil
	}
	return &infoList[index], nil
}

// Connect connects controller with ref, replacing current connection.
func (s *Shell) Connect(ref l1.ControllerRef) error {
	connector, err := s.Connector()
	if err != nil {
		return err
	}
	connLoop, err := StartConnLoop(connector, ref)
	if err != nil {
		return err
	}
	s.Disconnect()
	s.Loop = connLoop
	s.Shell.SetPrompt(ref.Name() + " > ")
	return nil
}

// Disconnect disconnects current controller.
func (s *Shell) Disconnect() {
	if s.Loop != nil {
		s.Loop.Stop()
		s.Loop = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs a single command given by args, or the interactive shell.
func (s *Shell) Run(args ...string) error {
	if s.AutoConnect && s.Config.Ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Ref.Name())
		}
		if err := s.Connect(s.Config.Ref); err != nil {
			return fmt.Errorf("connect %q failed: %v", s.Config.Ref.Name(), err)
		}
	}
	defer s.Disconnect()
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return fmt.Errorf("command expected")
	}
	s.Shell.Run()
	return nil
}

// FormatInfo formats ControllerInfo for display.
func FormatInfo(info l1.ControllerInfo) string {
	str := info.Ref.Name()
	if info.Meta.Description != "" {
		str += ": " + info.Meta.Description
	}
	if len(info.Meta.Labels) > 0 {
		labels := make([]string, 0, len(info.Meta.Labels))
		for k, v := range info.Meta.Labels {
			labels = append(labels, k+"="+v)
		}
		sort.Strings(labels)
		str += " [" + strings.Join(labels, ",") + "]"
	}
	return str
}

// PrintMessage prints a message in JSON or text.
func PrintMessage(c *ishell.Context, msg fx.Message) error {
	serializable, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return msgs.ErrNotSerializable
	}
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(serializable.Serializable())
		if err != nil {
			return err
		}
		c.Println(string(out))
		return nil
	}
	c.Printf("%s %s\n",
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		serializable.Serializable().String())
	return nil
}

// DoCommand sends a command to the connected controller and prints the
// result. Errors are printed and also returned.
func DoCommand(c *ishell.Context, msg fx.Message) error {
	err := doCommand(c, msg)
	if err != nil {
		c.Err(err)
	}
	return err
}

func doCommand(c *ishell.Context, msg fx.Message) error {
	s := ShellFrom(c)
	if s.Loop == nil {
		return ErrNotConnected
	}
	select {
	case res := <-s.Loop.Conn.DoCommand(msg).ResultChan():
		if res.Err != nil {
			return res.Err
		}
		if _, ok := res.Msg.(*msgs.CommandOK); ok && !s.OutputJSON {
			c.Println("OK")
			return nil
		}
		return PrintMessage(c, res.Msg)
	case <-time.After(CommandTimeout):
		return fmt.Errorf("command timeout")
	}
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	if err := New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...); err != nil {
		glog.Fatal(err)
	}
}
