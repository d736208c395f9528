package main

import "os"

// Windows has no user signals; pause from stdin only
func pauseSignals() []os.Signal {
	return nil
}
