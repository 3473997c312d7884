package main

import (
	"github.com/robotalks/kl200/pkg/cli/sh"
	env "github.com/robotalks/kl200/pkg/l1/env/connector"

	_ "github.com/robotalks/kl200/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
