//go:build unix

package session

import (
	"os"
	"os/signal"
	"syscall"
)

// registerSignals wires the advisory pause/resume signals and the interrupt
// signals. SIGUSR1 pauses, SIGUSR2 resumes, SIGINT is the delegated
// interrupt, SIGTERM stops outright.
func registerSignals(ch chan<- os.Signal) {
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2, os.Interrupt, syscall.SIGTERM)
}

func classifySignal(sig os.Signal) controlMsg {
	switch sig {
	case syscall.SIGUSR1:
		return ctlPause
	case syscall.SIGUSR2:
		return ctlResume
	case syscall.SIGTERM:
		return ctlStop
	default:
		return ctlInterrupt
	}
}
