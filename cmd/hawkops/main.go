package main

import (
	"os"

	hawkopscmd "github.com/hawkops/hawkops/pkg/hawkops/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := hawkopscmd.NewRootCommand(hawkopscmd.DefaultConfig())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
