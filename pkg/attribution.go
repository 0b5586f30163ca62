package bank

// Output matching must happen per-vout, never at the transaction
// level: the node reports a transaction-level total, and a single
// broadcast transaction can pay several customers of this service.
// If two accounts were each credited the aggregate, an attacker who
// controls both gets double-credited from one transaction.

// AmountOnOutputs sums the value of the outputs whose destination
// address belongs to the given address set.
func AmountOnOutputs(outputs []TxOut, owned AddressSet) Amount {
	var total Amount
	for _, out := range outputs {
		for _, addr := range out.Addresses {
			if owned.Contains(addr) {
				total += out.Value
				break
			}
		}
	}
	return total
}

// OwnedAddressesOnOutputs returns the owned addresses that appear as
// destinations of the outputs, in output order.
func OwnedAddressesOnOutputs(outputs []TxOut, owned AddressSet) []Address {
	var matched []Address
	seen := make(map[Address]bool)
	for _, out := range outputs {
		for _, addr := range out.Addresses {
			if owned.Contains(addr) && !seen[addr] {
				matched = append(matched, addr)
				seen[addr] = true
			}
		}
	}
	return matched
}
