package event

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/pebbe/zmq4"

	bank "github.com/satbank/satbank/pkg"
)

// interface guard ensures ZMQReceiver implements bank.NodeEmitter
var _ bank.NodeEmitter = &ZMQReceiver{}

// ZMQReceiver listens to bitcoind's ZMQ notification socket and fans
// node events out to subscribers (the deposit sweeper, mainly).
type ZMQReceiver struct {
	listeners   []chan<- bank.NodeEvent
	nodeAddress string
}

func (z *ZMQReceiver) Subscribe(ch chan<- bank.NodeEvent) {
	z.listeners = append(z.listeners, ch)
}

func NewZMQReceiver(config bank.Config) (*ZMQReceiver, error) {
	nodeConf, ok := config.Bitcoind[config.SatBank.Bitcoind]
	if !ok {
		return nil, fmt.Errorf("no bitcoind config named %q", config.SatBank.Bitcoind)
	}
	return &ZMQReceiver{
		listeners:   make([]chan<- bank.NodeEvent, 0, 10),
		nodeAddress: fmt.Sprintf("tcp://%s:%d", nodeConf.Host, nodeConf.ZMQPort),
	}, nil
}

// Implements conductor.Service
func (z *ZMQReceiver) Run(started, stopped chan bool, stop chan context.Context) error {
	sock, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return err
	}
	log.Println("ZMQ: connecting to:", z.nodeAddress)
	err = sock.Connect(z.nodeAddress)
	if err != nil {
		return err
	}
	err = subscribeAll(sock, "hashtx", "hashblock")
	if err != nil {
		return err
	}
	go func() {
		started <- true
		go func() {
			<-stop
			sock.Close()
			stopped <- true
		}()
		for {
			msg, err := sock.RecvMessageBytes(0)
			if err != nil {
				log.Println("ZMQ: receive error:", err)
				return
			}
			e := bank.NodeEvent{}
			switch string(msg[0]) {
			case "hashtx":
				e.Type = bank.TX
				e.ID = toHex(msg[1])
			case "hashblock":
				e.Type = bank.Block
				e.ID = toHex(msg[1])
			default:
				continue
			}
			for _, ch := range z.listeners {
				ch <- e
			}
		}
	}()
	return nil
}

func toHex(b []byte) string {
	return hex.EncodeToString(b)
}

func subscribeAll(sock *zmq4.Socket, topics ...string) error {
	for _, topic := range topics {
		err := sock.SetSubscribe(topic)
		if err != nil {
			return err
		}
	}
	return nil
}
