package node

import (
	"fmt"
	"sync"

	bank "github.com/satbank/satbank/pkg"
)

// interface guard ensures Mock implements bank.L1
var _ bank.L1 = &Mock{}

// Mock is a scriptable bank.L1 implementor for tests: balances, fees,
// transactions and failures are all set directly on the struct.
type Mock struct {
	mu sync.Mutex

	Balance     bank.Amount // hot-wallet balance
	Fee         bank.Amount // estimate returned by EstimateFee
	ActualFee   bank.Amount // fee recorded on broadcast transactions
	FeeErr      error
	SendErr     error
	ListErr     error
	NextTxID    string
	HideSent    bool // broadcasts do not appear in ListTransactions
	Txns        []bank.ChainTxn
	Decoded     map[string][]bank.TxOut // rawHex -> outputs
	NewAddrs    []bank.Address          // queue consumed by NewAddress
	SendCount   int
	sendCounter int
}

func NewMock() *Mock {
	return &Mock{Decoded: make(map[string][]bank.TxOut)}
}

func (m *Mock) ChainBalance() (bank.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Balance, nil
}

func (m *Mock) EstimateFee(payTo bank.Address, amount bank.Amount) (bank.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FeeErr != nil {
		return 0, m.FeeErr
	}
	return m.Fee, nil
}

func (m *Mock) SendToAddress(payTo bank.Address, amount bank.Amount) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return "", m.SendErr
	}
	m.SendCount++
	m.sendCounter++
	txid := m.NextTxID
	if txid == "" {
		txid = fmt.Sprintf("mock-txid-%d", m.sendCounter)
	}
	if !m.HideSent {
		m.Txns = append(m.Txns, bank.ChainTxn{
			TxID:            txid,
			Fee:             m.ActualFee,
			Amount:          amount,
			IsOutgoing:      true,
			OutputAddresses: []bank.Address{payTo},
		})
	}
	return txid, nil
}

func (m *Mock) ListTransactions(incoming bool) ([]bank.ChainTxn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	matched := []bank.ChainTxn{}
	for _, tx := range m.Txns {
		if incoming == tx.IsOutgoing {
			continue
		}
		matched = append(matched, tx)
	}
	return matched, nil
}

func (m *Mock) DecodeTransaction(rawHex string) ([]bank.TxOut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	outputs, ok := m.Decoded[rawHex]
	if !ok {
		return nil, fmt.Errorf("no decode fixture for %q", rawHex)
	}
	return outputs, nil
}

func (m *Mock) NewAddress() (bank.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.NewAddrs) == 0 {
		return "", fmt.Errorf("no addresses scripted")
	}
	addr := m.NewAddrs[0]
	m.NewAddrs = m.NewAddrs[1:]
	return addr, nil
}
