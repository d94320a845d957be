//go:build !unix

package session

import (
	"os"
	"os/signal"
)

// Platforms without user-defined signals only get the interrupt; the
// advisory pause/resume signals are simply not registered.
func registerSignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt)
}

func classifySignal(os.Signal) controlMsg {
	return ctlInterrupt
}
