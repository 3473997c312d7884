package kl200

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/kl200/pkg/cli/sh"
	fx "github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/kl200/device"
	"github.com/robotalks/kl200/pkg/kl200/msgs"
)

// ParseUint parses a decimal or 0x prefixed argument.
func ParseUint(name, arg string) (uint32, error) {
	val, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return uint32(val), nil
}

// ParseSwitch parses on/off style arguments.
func ParseSwitch(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "auto", "1", "true":
		return true, nil
	case "off", "query", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch %q, expect on or off", arg)
}

// valueCmd creates a command taking a single numeric argument.
func valueCmd(name, alias, arg, help string, build func(uint32) fx.Message) ishell.Cmd {
	return ishell.Cmd{
		Name:    name,
		Aliases: []string{alias},
		Help:    arg + "  " + help,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("%s required", arg))
				return
			}
			val, err := ParseUint(arg, c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, build(val))
		}),
	}
}

var (
	// StatusCmd exposes StatusQuery command.
	StatusCmd = ishell.Cmd{
		Name:    "kl.status",
		Aliases: []string{"kls"},
		Help:    "show sensor status",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.StatusQuery{})
		}),
	}

	// ReadCmd exposes ReadDistance command.
	ReadCmd = ishell.Cmd{
		Name:    "kl.read",
		Aliases: []string{"klr"},
		Help:    "read distance now",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.ReadDistance{})
		}),
	}

	// WatchCmd prints distance events.
	WatchCmd = ishell.Cmd{
		Name:    "kl.watch",
		Aliases: []string{"klw"},
		Help:    "[COUNT]  print distance events",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			count := uint32(10)
			if len(c.Args) > 0 {
				val, err := ParseUint("COUNT", c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				count = val
			}
			events := sh.ShellFrom(c).Loop.DrainEvents()
			for n := uint32(0); n < count; {
				select {
				case ev := <-events:
					if _, ok := ev.(*msgs.DistanceEvent); !ok {
						continue
					}
					n++
					if err := sh.PrintMessage(c, ev); err != nil {
						c.Err(err)
						return
					}
				case <-time.After(sh.CommandTimeout):
					c.Err(fmt.Errorf("no distance event"))
					return
				}
			}
		}),
	}

	// ResetCmd exposes RestoreFactory command.
	ResetCmd = ishell.Cmd{
		Name:    "kl.reset",
		Aliases: []string{"klreset"},
		Help:    "[soft]  restore factory settings, hard by default",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			var msg msgs.RestoreFactory
			if len(c.Args) > 0 {
				switch c.Args[0] {
				case "soft":
					msg.Soft = true
				case "hard":
				default:
					c.Err(fmt.Errorf("invalid reset type %q", c.Args[0]))
					return
				}
			}
			sh.DoCommand(c, &msg)
		}),
	}

	// UploadCmd exposes SetUploadMode command.
	UploadCmd = ishell.Cmd{
		Name:    "kl.upload",
		Aliases: []string{"klu"},
		Help:    "on|off  automatic upload or query mode",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("on or off required"))
				return
			}
			auto, err := ParseSwitch(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, &msgs.SetUploadMode{Auto: auto})
		}),
	}

	// BaudCmd exposes ChangeBaudRate command, accepting either a code or
	// a line speed.
	BaudCmd = ishell.Cmd{
		Name:    "kl.baud",
		Aliases: []string{"klb"},
		Help:    "CODE|RATE  change baud rate, code 0-9 or line speed",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("CODE required"))
				return
			}
			val, err := ParseUint("CODE", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if code, ok := device.BaudRateCode(int(val)); ok {
				val = uint32(code)
			}
			sh.DoCommand(c, &msgs.ChangeBaudRate{Code: val})
		}),
	}

	// AddressCmd exposes ChangeAddress command.
	AddressCmd = valueCmd("kl.addr", "kla", "ADDR", "change module address, up to 0xfffe",
		func(val uint32) fx.Message { return &msgs.ChangeAddress{Address: val} })

	// IntervalCmd exposes SetUploadInterval command.
	IntervalCmd = valueCmd("kl.interval", "kli", "INTERVAL", "automatic upload interval 1-100",
		func(val uint32) fx.Message { return &msgs.SetUploadInterval{Interval: val} })

	// LEDCmd exposes SetLEDMode command.
	LEDCmd = valueCmd("kl.led", "kll", "MODE", "LED mode 0-3",
		func(val uint32) fx.Message { return &msgs.SetLEDMode{Mode: val} })

	// RelayCmd exposes SetRelayMode command.
	RelayCmd = valueCmd("kl.relay", "klrelay", "MODE", "relay mode 0-1",
		func(val uint32) fx.Message { return &msgs.SetRelayMode{Mode: val} })

	// CommCmd exposes SetCommMode command.
	CommCmd = valueCmd("kl.comm", "klc", "MODE", "communication mode 0-1, 0 is UART",
		func(val uint32) fx.Message { return &msgs.SetCommMode{Mode: val} })
)

func init() {
	sh.AddCmds(
		&StatusCmd,
		&ReadCmd,
		&WatchCmd,
		&ResetCmd,
		&AddressCmd,
		&BaudCmd,
		&UploadCmd,
		&IntervalCmd,
		&LEDCmd,
		&RelayCmd,
		&CommCmd,
	)
}
