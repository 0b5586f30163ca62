package bank

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
)

// L1 represents access to the service's Bitcoin node: the shared
// hot wallet that backs every customer balance collectively.
//
// Implemented over bitcoind RPC (pkg/node); tests use the mock in
// the same package. Everything the settlement core needs from the
// chain goes through this interface so there is no ambient global
// node handle anywhere.
type L1 interface {
	// ChainBalance returns the spendable on-chain balance of the
	// hot wallet, in satoshis.
	ChainBalance() (Amount, error)
	// EstimateFee estimates the chain fee for sending amount to payTo.
	EstimateFee(payTo Address, amount Amount) (Amount, error)
	// SendToAddress broadcasts a payment from the hot wallet and
	// returns the transaction ID. Irreversible on success.
	SendToAddress(payTo Address, amount Amount) (txid string, err error)
	// ListTransactions returns recent wallet transactions in the
	// given direction (incoming deposits or outgoing payments).
	ListTransactions(incoming bool) ([]ChainTxn, error)
	// DecodeTransaction decodes a raw transaction into its ordered
	// list of outputs.
	DecodeTransaction(rawHex string) ([]TxOut, error)
	// NewAddress has the node issue a fresh deposit address.
	NewAddress() (Address, error)
}

type Address string

// Amount is a quantity of satoshis. Arithmetic is plain int64;
// btcutil provides BTC formatting and float conversion.
type Amount = btcutil.Amount

// ChainTxn is one wallet transaction as reported by the node.
// Amount and OutputAddresses are transaction-level aggregates: a
// single transaction can pay several unrelated parties, so per-account
// values must come from DecodeTransaction + output matching, never
// from Amount.
type ChainTxn struct {
	TxID            string
	RawHex          string
	Confirmations   int64 // 0 = unconfirmed (in mempool)
	Amount          Amount
	Fee             Amount // set on outgoing transactions only
	IsOutgoing      bool
	OutputAddresses []Address
	CreatedAt       time.Time
}

// TxOut is one decoded transaction output (vout).
type TxOut struct {
	Value     Amount
	Addresses []Address
}
