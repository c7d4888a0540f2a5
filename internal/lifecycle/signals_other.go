//go:build !unix

package lifecycle

import "os"

func terminationSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
