package services

import (
	"github.com/satbank/satbank/pkg/conductor"

	bank "github.com/satbank/satbank/pkg"
)

func StartServices(cond *conductor.Conductor, bus bank.MessageBus, conf bank.Config, store bank.Store, rec bank.Reconciler, emitter bank.NodeEmitter) *DepositSweeper {
	// DepositSweeper credits confirmed deposits and sends
	// ACC_DEPOSIT_CONFIRMED events.
	sweeper := NewDepositSweeper(store, rec, bus, conf)
	if emitter != nil {
		emitter.Subscribe(sweeper.NodeEventChan())
	}
	cond.Service("DepositSweeper", sweeper)
	return sweeper
}
