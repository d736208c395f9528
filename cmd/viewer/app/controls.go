package app

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
)

// WatchControls toggles pause for every signal received and for every "p" or
// space line read from in. It returns when ctx is done. Reading in is not
// interruptible, so that goroutine ends with in.
func (v *Viewer) WatchControls(ctx context.Context, in io.Reader, signals <-chan os.Signal) {
	if in != nil {
		go v.readControls(in)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			v.Toggle()
		}
	}
}

func (v *Viewer) readControls(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if isToggle(scanner.Text()) {
			v.Toggle()
		}
	}
}

func isToggle(line string) bool {
	line = strings.TrimRight(line, "\r")
	if line != "" && strings.TrimSpace(line) == "" {
		return true // space bar then Enter
	}
	return strings.EqualFold(strings.TrimSpace(line), "p")
}
