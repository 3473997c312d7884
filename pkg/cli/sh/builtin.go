package sh

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/kl200/pkg/l1"
)

var (
	// DiscoverCmd lists controllers.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "[REGISTRY-URL]  list controllers",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 {
				s.UseRegistry(c.Args[0])
			}
			infoList, err := s.DiscoverControllers(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No controllers found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a controller.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[REGISTRY-URL] [TYPE [ID]]  connect a controller, discover if ID is absent",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			args := c.Args
			if len(args) > 0 && strings.Contains(args[0], "://") {
				s.UseRegistry(args[0])
				args = args[1:]
			}
			ref, err := resolveRef(s, args)
			if err != nil {
				c.Err(err)
				return
			}
			if err = s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current controller.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "disconnect current controller",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

func resolveRef(s *Shell, args []string) (l1.ControllerRef, error) {
	if len(args) >= 2 {
		return l1.ControllerRef{Type: args[0], ID: args[1]}, nil
	}
	var filter func(l1.ControllerInfo) bool
	if len(args) == 1 {
		filter = func(info l1.ControllerInfo) bool {
			return info.Ref.Type == args[0]
		}
	}
	info, err := s.SelectController(filter)
	if err != nil {
		return l1.ControllerRef{}, err
	}
	if info == nil {
		return l1.ControllerRef{}, fmt.Errorf("no controller discovered")
	}
	return info.Ref, nil
}
