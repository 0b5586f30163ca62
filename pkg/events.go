package bank

// SatBank event types

// bus.Send(ACC_PAYMENT_SENT, payment)
// bus.Send(ACC_DEPOSIT_CONFIRMED, receipt)

// Interface for any event
type EventType interface {
	Type() string
}

// slice of all msg types for config funcs lookup
var EVENT_TYPES []EventType = []EventType{EVENT_ALL("ALL"),
	EVENT_SYS("SYS"),
	EVENT_ACC("ACC")}

// Special category, do not use directly, represents *
type EVENT_ALL string

func (e EVENT_ALL) Type() string {
	return "ALL"
}

// System Events
type EVENT_SYS string

func (e EVENT_SYS) Type() string {
	return "SYS"
}

const (
	SYS_STARTUP EVENT_SYS = "STARTUP"
	SYS_ERR     EVENT_SYS = "ERR"
	SYS_MSG     EVENT_SYS = "MSG"
)

// Account Events
type EVENT_ACC string

func (e EVENT_ACC) Type() string {
	return "ACC"
}

const (
	ACC_CREATED           EVENT_ACC = "CREATED"
	ACC_ADDRESS_ISSUED    EVENT_ACC = "ADDRESS_ISSUED"
	ACC_PAYMENT_SENT      EVENT_ACC = "PAYMENT_SENT"
	ACC_ON_US_TRANSFER    EVENT_ACC = "ON_US_TRANSFER"
	ACC_DEPOSIT_CONFIRMED EVENT_ACC = "DEPOSIT_CONFIRMED"
)

// PaymentSent is the bus payload for ACC_PAYMENT_SENT / ACC_ON_US_TRANSFER.
type PaymentSent struct {
	ForeignID string  `json:"foreign_id"`
	PayTo     Address `json:"pay_to"`
	Amount    Amount  `json:"amount"`
	Fee       Amount  `json:"fee"`
	TxID      string  `json:"txid,omitempty"`
	OnUs      bool    `json:"on_us"`
}

// DepositConfirmed is the bus payload for ACC_DEPOSIT_CONFIRMED.
type DepositConfirmed struct {
	ForeignID string    `json:"foreign_id"`
	TxID      string    `json:"txid"`
	Amount    Amount    `json:"amount"`
	Addresses []Address `json:"addresses"`
}
