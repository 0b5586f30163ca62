package bank

type NodeEventType int

const (
	TX NodeEventType = iota
	Block
)

// NodeEvent is a raw notification from the node: a transaction hit
// the mempool or a new block was found. The deposit sweeper uses
// Block events as a hint that confirmation counts have advanced.
type NodeEvent struct {
	Type NodeEventType
	ID   string
	Data string
}

type NodeEmitter interface {
	Subscribe(chan<- NodeEvent)
}
