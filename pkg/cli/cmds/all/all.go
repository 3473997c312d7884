// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/kl200/pkg/cli/cmds/kl200"
)
