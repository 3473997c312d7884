package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/kl200/device"
	"github.com/robotalks/kl200/pkg/kl200/sensor"
	"github.com/robotalks/kl200/pkg/l1"
	env "github.com/robotalks/kl200/pkg/l1/env/controller"
)

func init() {
	env.SetControllerType("kl200", l1.ControllerMeta{Description: "KL200 Laser Distance Sensor"})
	env.SetupFlags()
	device.SetupFlags()
	sensor.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	ctl := sensor.NewConfig().NewController(env, device.NewConfig())
	framework.NewLoop().Add(env, ctl).RunOrFail()
}
