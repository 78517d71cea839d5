package pactffi

// MetadataIterator walks a snapshot of a message's metadata taken at
// creation. Later changes to the message are not visible.
type MetadataIterator struct {
	pairs []MetadataPair
	next  int
}

// NewMetadataIterator snapshots m
func NewMetadataIterator(m *MetadataMap) *MetadataIterator {
	return &MetadataIterator{pairs: m.Snapshot()}
}

// Next returns the next pair. After the last pair it keeps returning false.
func (it *MetadataIterator) Next() (MetadataPair, bool) {
	if it.next >= len(it.pairs) {
		return MetadataPair{}, false
	}
	p := it.pairs[it.next]
	it.next++
	return p, true
}

// Remaining returns the number of pairs not yet returned
func (it *MetadataIterator) Remaining() int {
	return len(it.pairs) - it.next
}

// ProviderStateIterator walks a snapshot of a message's provider states
type ProviderStateIterator struct {
	states []ProviderState
	next   int
}

// NewProviderStateIterator snapshots the states of msg
func NewProviderStateIterator(msg *Message) *ProviderStateIterator {
	return &ProviderStateIterator{states: msg.ProviderStates()}
}

// Next returns the next state. After the last state it keeps returning false.
func (it *ProviderStateIterator) Next() (ProviderState, bool) {
	if it.next >= len(it.states) {
		return ProviderState{}, false
	}
	ps := it.states[it.next]
	it.next++
	return ps.clone(), true
}
