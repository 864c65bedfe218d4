package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}
