package main

import (
	"github.com/robotalks/cdh.go/pkg/cli/sh"
	env "github.com/robotalks/cdh.go/pkg/l1/env/connector"

	_ "github.com/robotalks/cdh.go/pkg/cli/cmds/bridge"
)

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
