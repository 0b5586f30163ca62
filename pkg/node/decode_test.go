package node

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const p2pkhAddr = "1PMycacnJaSqwwJqjawXBErnLsZ7RkXUAs"

// buildRawTx serializes a one-input transaction with the given outputs
// into the hex form bitcoind hands back.
func buildRawTx(t *testing.T, outputs ...*wire.TxOut) string {
	t.Helper()
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{}, 0), nil, nil))
	for _, out := range outputs {
		tx.AddTxOut(out)
	}
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return hex.EncodeToString(buf.Bytes())
}

func TestDecodeOutputs(t *testing.T) {
	addr, err := btcutil.DecodeAddress(p2pkhAddr, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		t.Fatalf("build script: %v", err)
	}
	nullData, err := txscript.NullDataScript([]byte("memo"))
	if err != nil {
		t.Fatalf("build null data script: %v", err)
	}

	rawHex := buildRawTx(t,
		wire.NewTxOut(50000, pkScript),
		wire.NewTxOut(0, nullData),
	)

	outputs, err := DecodeOutputs(rawHex, &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("DecodeOutputs: %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("want 2 outputs, got %d", len(outputs))
	}
	if outputs[0].Value != 50000 {
		t.Fatalf("output 0 value: want 50000, got %d", outputs[0].Value)
	}
	if len(outputs[0].Addresses) != 1 || string(outputs[0].Addresses[0]) != p2pkhAddr {
		t.Fatalf("output 0 addresses: %v", outputs[0].Addresses)
	}
	// non-standard outputs keep their value but resolve no address
	if outputs[1].Value != 0 || len(outputs[1].Addresses) != 0 {
		t.Fatalf("output 1: %+v", outputs[1])
	}
}

func TestDecodeOutputsRejectsGarbage(t *testing.T) {
	if _, err := DecodeOutputs("not hex at all", &chaincfg.MainNetParams); err == nil {
		t.Fatal("want an error for invalid hex")
	}
	if _, err := DecodeOutputs("deadbeef", &chaincfg.MainNetParams); err == nil {
		t.Fatal("want an error for a truncated transaction")
	}
}
