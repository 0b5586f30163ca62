package services

import (
	"context"
	"log"
	"time"

	bank "github.com/satbank/satbank/pkg"
)

const (
	RETRY_DELAY = 5 * time.Second // for Database/node errors
	BATCH_SIZE  = 10              // number of Accounts to process at once
)

// DepositSweeper runs ReconcileConfirmedDeposits across every account
// on a schedule, and immediately after each new block. Reconciliation
// is idempotent and self-serializing, so overlapping runs are safe;
// a failing account is logged and skipped rather than stalling the
// sweep.
type DepositSweeper struct {
	store      bank.Store
	reconciler bank.Reconciler
	bus        bank.MessageBus
	interval   time.Duration
	blocks     chan bank.NodeEvent
}

func NewDepositSweeper(store bank.Store, rec bank.Reconciler, bus bank.MessageBus, conf bank.Config) *DepositSweeper {
	interval := time.Duration(conf.Sweeper.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &DepositSweeper{
		store:      store,
		reconciler: rec,
		bus:        bus,
		interval:   interval,
		blocks:     make(chan bank.NodeEvent, 100),
	}
}

// Subscribe the sweeper to a NodeEmitter to sweep on new blocks.
func (d *DepositSweeper) NodeEventChan() chan<- bank.NodeEvent {
	return d.blocks
}

// Implements conductor.Service
func (d *DepositSweeper) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		// Recover from panic used to stop or restart the service.
		defer func() {
			if r := recover(); r != nil {
				log.Println("DepositSweeper: panic received:", r)
			}
		}()
		started <- true
		timer := time.NewTimer(d.interval)
		defer timer.Stop()
		for {
			select {
			case <-stop:
				close(stopped)
				return
			case ev := <-d.blocks:
				if ev.Type != bank.Block {
					continue
				}
				log.Println("DepositSweeper: new block:", ev.ID)
			case <-timer.C:
			}
			d.sweepAll()
			timer.Reset(d.interval)
		}
	}()
	return nil
}

func (d *DepositSweeper) sweepAll() {
	cursor := 0
	for {
		ids, next, err := d.store.ListAccountIDs(cursor, BATCH_SIZE)
		if err != nil {
			log.Println("DepositSweeper: ListAccountIDs:", err)
			time.Sleep(RETRY_DELAY)
			return
		}
		for _, id := range ids {
			d.sweepAccount(id)
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

func (d *DepositSweeper) sweepAccount(id string) {
	acc, err := d.store.GetAccountByID(id)
	if err != nil {
		log.Printf("DepositSweeper: GetAccountByID '%s': %v\n", id, err)
		return
	}
	err = d.reconciler.ReconcileConfirmedDeposits(acc.ForeignID)
	if err != nil {
		log.Printf("DepositSweeper: reconcile '%s': %v\n", acc.ForeignID, err)
		if bank.IsFatalError(err) {
			d.bus.Send(bank.SYS_ERR, err.Error())
		}
	}
}
