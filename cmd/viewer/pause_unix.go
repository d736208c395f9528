//go:build !windows

package main

import (
	"os"
	"syscall"
)

func pauseSignals() []os.Signal {
	return []os.Signal{syscall.SIGUSR1}
}
