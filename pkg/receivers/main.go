package receivers

import (
	"github.com/satbank/satbank/pkg/conductor"

	bank "github.com/satbank/satbank/pkg"
)

// Sets up standard receivers.
func SetUpReceivers(cond *conductor.Conductor, bus bank.MessageBus, conf bank.Config) {
	// Set up configured loggers
	SetupLoggers(cond, bus, conf)

	// Set up configured Callbacks
	SetupCallbacks(cond, bus, conf)
}
