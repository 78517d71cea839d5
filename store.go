package pactffi

// Store tracks every object handed out across the boundary. Each kind lives
// in its own arena, so a handle is only accepted by operations of its kind.
type Store struct {
	messages      *arena[*Message]
	metadataIters *arena[*MetadataIterator]
	pairs         *arena[MetadataPair]
	stateIters    *arena[*ProviderStateIterator]
}

// StoreStats counts live handles per kind
type StoreStats struct {
	Messages          int
	MetadataIterators int
	MetadataPairs     int
	StateIterators    int
}

// Total returns the number of live handles of every kind
func (s StoreStats) Total() int {
	return s.Messages + s.MetadataIterators + s.MetadataPairs + s.StateIterators
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		messages:      newArena[*Message](kindMessage),
		metadataIters: newArena[*MetadataIterator](kindMetadataIter),
		pairs:         newArena[MetadataPair](kindMetadataPair),
		stateIters:    newArena[*ProviderStateIterator](kindStateIter),
	}
}

func invalidHandle(h Handle) error {
	return fmtErrorf("%s: %w", h, ErrInvalidHandle)
}

// AddMessage registers msg and returns its handle
func (s *Store) AddMessage(msg *Message) Handle {
	return s.messages.insert(msg)
}

// Message returns the live message behind h
func (s *Store) Message(h Handle) (*Message, error) {
	msg, ok := s.messages.get(h)
	if !ok {
		return nil, invalidHandle(h)
	}
	return msg, nil
}

// RemoveMessage releases h. Iterators created from the message stay valid.
func (s *Store) RemoveMessage(h Handle) error {
	if _, ok := s.messages.remove(h); !ok {
		return invalidHandle(h)
	}
	return nil
}

// AddMetadataIter registers it and returns its handle
func (s *Store) AddMetadataIter(it *MetadataIterator) Handle {
	return s.metadataIters.insert(it)
}

// MetadataIter returns the live iterator behind h
func (s *Store) MetadataIter(h Handle) (*MetadataIterator, error) {
	it, ok := s.metadataIters.get(h)
	if !ok {
		return nil, invalidHandle(h)
	}
	return it, nil
}

// RemoveMetadataIter releases h
func (s *Store) RemoveMetadataIter(h Handle) error {
	if _, ok := s.metadataIters.remove(h); !ok {
		return invalidHandle(h)
	}
	return nil
}

// AddPair registers a pair returned by an iterator
func (s *Store) AddPair(p MetadataPair) Handle {
	return s.pairs.insert(p)
}

// Pair returns the live pair behind h
func (s *Store) Pair(h Handle) (MetadataPair, error) {
	p, ok := s.pairs.get(h)
	if !ok {
		return MetadataPair{}, invalidHandle(h)
	}
	return p, nil
}

// RemovePair releases h
func (s *Store) RemovePair(h Handle) error {
	if _, ok := s.pairs.remove(h); !ok {
		return invalidHandle(h)
	}
	return nil
}

// AddStateIter registers it and returns its handle
func (s *Store) AddStateIter(it *ProviderStateIterator) Handle {
	return s.stateIters.insert(it)
}

// StateIter returns the live iterator behind h
func (s *Store) StateIter(h Handle) (*ProviderStateIterator, error) {
	it, ok := s.stateIters.get(h)
	if !ok {
		return nil, invalidHandle(h)
	}
	return it, nil
}

// RemoveStateIter releases h
func (s *Store) RemoveStateIter(h Handle) error {
	if _, ok := s.stateIters.remove(h); !ok {
		return invalidHandle(h)
	}
	return nil
}

// Stats returns the live handle counts
func (s *Store) Stats() StoreStats {
	return StoreStats{
		Messages:          s.messages.len(),
		MetadataIterators: s.metadataIters.len(),
		MetadataPairs:     s.pairs.len(),
		StateIterators:    s.stateIters.len(),
	}
}

// Reset releases every handle and returns the counts released
func (s *Store) Reset() StoreStats {
	return StoreStats{
		Messages:          len(s.messages.drain()),
		MetadataIterators: len(s.metadataIters.drain()),
		MetadataPairs:     len(s.pairs.drain()),
		StateIterators:    len(s.stateIters.drain()),
	}
}
