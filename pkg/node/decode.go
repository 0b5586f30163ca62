package node

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	bank "github.com/satbank/satbank/pkg"
)

// DecodeOutputs deserializes a raw transaction and returns its ordered
// outputs with destination addresses resolved against the chain
// parameters. Decoding happens locally; there is no node round-trip.
//
// Outputs with non-standard scripts are kept with an empty address
// list: they still count toward the transaction but can never be
// attributed to an account.
func DecodeOutputs(rawHex string, params *chaincfg.Params) ([]bank.TxOut, error) {
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction hex: %v", err)
	}
	var msg wire.MsgTx
	if err := msg.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("unable to deserialize transaction: %v", err)
	}
	outputs := make([]bank.TxOut, 0, len(msg.TxOut))
	for _, out := range msg.TxOut {
		_, addrs, _, err := txscript.ExtractPkScriptAddrs(out.PkScript, params)
		if err != nil {
			addrs = nil
		}
		txOut := bank.TxOut{Value: bank.Amount(out.Value)}
		for _, addr := range addrs {
			txOut.Addresses = append(txOut.Addresses, bank.Address(addr.EncodeAddress()))
		}
		outputs = append(outputs, txOut)
	}
	return outputs, nil
}

func chainhashFromStr(txid string) (*chainhash.Hash, error) {
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("invalid txid %q: %v", txid, err)
	}
	return hash, nil
}
