package pactffi

// MetadataPair is one key/value entry of a message's metadata
type MetadataPair struct {
	Key   string
	Value string
}

// MetadataMap is an insertion ordered string map. Keys are insert-once.
type MetadataMap struct {
	keys   []string
	values map[string]string
}

// NewMetadataMap creates an empty map
func NewMetadataMap() *MetadataMap {
	return &MetadataMap{values: make(map[string]string)}
}

// Insert adds key with value. An existing key keeps its value and
// ErrKeyExists is returned.
func (m *MetadataMap) Insert(key, value string) error {
	if _, exists := m.values[key]; exists {
		return fmtErrorf("key '%s': %w", key, ErrKeyExists)
	}
	m.keys = append(m.keys, key)
	m.values[key] = value
	return nil
}

// Find returns the value stored for key
func (m *MetadataMap) Find(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries
func (m *MetadataMap) Len() int {
	return len(m.keys)
}

// Snapshot copies the entries in insertion order
func (m *MetadataMap) Snapshot() []MetadataPair {
	out := make([]MetadataPair, len(m.keys))
	for i, k := range m.keys {
		out[i] = MetadataPair{Key: k, Value: m.values[k]}
	}
	return out
}
