package main

import (
	"os"

	"github.com/tkingovr/logfilter/cmd/logfilter/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
