package conductor

import (
	"os"
	"os/signal"
	"syscall"
	"time"
)

// StartupTimeout sets how long each service may take to report ready.
func StartupTimeout(d time.Duration) func(*Conductor) {
	return func(c *Conductor) {
		c.startTimeout = d
	}
}

// ShutdownTimeout sets how long services may take to stop.
func ShutdownTimeout(d time.Duration) func(*Conductor) {
	return func(c *Conductor) {
		c.stopTimeout = d
	}
}

// Noisy turns on startup/shutdown logging.
func Noisy() func(*Conductor) {
	return func(c *Conductor) {
		c.noisy = true
	}
}

// HookSignals shuts the conductor down on SIGTERM or SIGINT.
func HookSignals() func(*Conductor) {
	return func(c *Conductor) {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			for {
				select {
				case sig := <-sigCh:
					c.logf("Caught %v signal, shutting down\n", sig)
					c.Stop()
				case <-c.shutdown:
					return
				}
			}
		}()
	}
}
