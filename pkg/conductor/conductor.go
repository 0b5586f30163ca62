package conductor

/*
Conductor starts named services in registration order, hands each one
a shutdown channel, and stops them together on request or on a hooked
signal. SatBank's long-running parts (bus, receivers, ZMQ listener,
sweeper, web API) all implement Service.
*/

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	defaultStartTimeout = 5 * time.Second
	defaultStopTimeout  = 5 * time.Second
)

// Service is a long-running component under conductor control. Run
// must not block: it starts its own goroutine, signals readiness on
// started, and after reading a context from stop it shuts down and
// signals stopped.
type Service interface {
	Run(started, stopped chan bool, stop chan context.Context) error
}

type managedService struct {
	name    string
	service Service
	ready   chan bool
	stopped chan bool
	stop    chan context.Context
}

type Conductor struct {
	started      bool
	noisy        bool
	startTimeout time.Duration // max wait for each service to report ready
	stopTimeout  time.Duration // max wait for services to stop on shutdown
	shutdown     chan bool     // closed once everything has stopped; returned from Start
	services     []*managedService
}

// NewConductor returns a conductor configured by the given option
// funcs (Noisy, HookSignals, the timeout setters).
func NewConductor(opts ...func(*Conductor)) *Conductor {
	c := Conductor{
		startTimeout: defaultStartTimeout,
		stopTimeout:  defaultStopTimeout,
		shutdown:     make(chan bool),
		services:     []*managedService{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Service registers a named service. Registration order is start
// order, which gives dependency ordering for free.
func (c *Conductor) Service(name string, service Service) {
	if c.started {
		panic("Cannot call Conductor.Service after Conductor.Start")
	}
	c.services = append(c.services, &managedService{
		name:    name,
		service: service,
		ready:   make(chan bool, 1),
		stopped: make(chan bool, 1),
		stop:    make(chan context.Context, 1),
	})
}

// Start runs every registered service in order and returns the channel
// that closes when the conductor has shut down. A service failing or
// timing out during startup shuts everything down.
func (c *Conductor) Start() chan bool {
	c.started = true
SRV_LOOP:
	for _, srv := range c.services {
		c.logf("🔧 Starting '%s':\n", srv.name)
		err := srv.service.Run(srv.ready, srv.stopped, srv.stop)
		if err != nil {
			c.logf("⚠️  '%s' exited with: %s\n", srv.name, err)
			c.Stop()
			break
		}
		select {
		case <-time.After(c.startTimeout):
			c.logf("⚠️  timed-out during startup: %s\n", srv.name)
			c.Stop()
			break SRV_LOOP
		case <-srv.ready:
			c.logf(".. ok\n")
		}
	}
	return c.shutdown
}

// Stop asks every service to shut down and waits out the stop timeout.
func (c *Conductor) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), c.stopTimeout)
	defer cancel()

	wg := sync.WaitGroup{}
	wg.Add(len(c.services))
	done := make(chan bool)
	go func() {
		wg.Wait()
		done <- true
	}()

	for _, srv := range c.services {
		fmt.Println("Requesting shutdown: ", srv.name)
		srv.stop <- ctx
		go func(s *managedService) {
			<-s.stopped
			fmt.Println("Shutdown complete: ", s.name)
			wg.Done()
		}(srv)
	}

	select {
	case <-done:
		fmt.Println("All services stopped, goodbye!")
	case <-time.After(c.stopTimeout + time.Second):
		fmt.Println("Timeout exceeded waiting for services to stop, shutting down")
	}
	close(c.shutdown)
}

func (c *Conductor) logf(s string, v ...interface{}) {
	if c.noisy {
		fmt.Printf(s, v...)
	}
}
