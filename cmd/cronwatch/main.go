package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cronwatch/core/internal/config"
	"github.com/cronwatch/core/pkg/logger"
)

func main() {
	logger.SetupLogger()

	cmd := newRootCommand(config.Load())
	if err := cmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.err != nil {
				fmt.Fprintln(os.Stderr, "Error:", exit.err)
			}
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFatal)
	}
}
