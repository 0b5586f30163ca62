package main

import (
	bank "github.com/satbank/satbank/pkg"
	"github.com/satbank/satbank/pkg/conductor"
	"github.com/satbank/satbank/pkg/event"
	"github.com/satbank/satbank/pkg/locker"
	"github.com/satbank/satbank/pkg/node"
	"github.com/satbank/satbank/pkg/receivers"
	"github.com/satbank/satbank/pkg/services"
	"github.com/satbank/satbank/pkg/store"
	"github.com/satbank/satbank/pkg/webapi"
	"github.com/shopspring/decimal"
)

func Server(conf bank.Config) {

	c := conductor.NewConductor(
		conductor.HookSignals(),
		conductor.Noisy(),
	)

	// Start the MessageBus Service
	bus := bank.NewMessageBus()
	c.Service("MessageBus", bus)

	// Set up all configured receivers
	receivers.SetUpReceivers(c, bus, conf)

	// Set up the L1 interface to bitcoind
	l1, err := node.NewClient(conf)
	if err != nil {
		panic(err)
	}

	// Setup a Store (accounts and the ledger share one database)
	db, err := store.NewSQLiteStore(conf.Store.DBFile)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	lock := locker.New()
	limits := bank.NewConfigLimits(db, conf)

	rate, err := decimal.NewFromString(conf.SatBank.FiatPerBTC)
	if err != nil {
		panic(err)
	}
	rates := bank.FixedRate{FiatPerBTC: rate}

	payer := bank.NewPayer(db, db, l1, lock, limits, rates, bus, conf)
	rec := bank.NewReconciler(db, db, l1, lock, rates, bus, conf)

	// Start the node listener service (ZMQ)
	zmq, err := event.NewZMQReceiver(conf)
	if err != nil {
		panic(err)
	}
	c.Service("ZMQ Listener", zmq)

	// Start internal services
	services.StartServices(c, bus, conf, db, rec, zmq)

	api := bank.NewAPI(db, db, payer, rec, bus, conf)

	// Start the Payment API
	p, err := webapi.NewWebAPI(conf, api)
	if err != nil {
		panic(err)
	}
	c.Service("Payment API", p)

	<-c.Start()
}
