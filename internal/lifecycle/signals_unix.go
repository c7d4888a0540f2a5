//go:build unix

package lifecycle

import (
	"os"
	"syscall"
)

func terminationSignals() []os.Signal {
	return []os.Signal{
		os.Interrupt,    // SIGINT
		syscall.SIGTERM, // kill
	}
}
