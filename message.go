package pactffi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Message is a contract message: description, provider states, metadata and
// opaque contents/matching rules. A Message is not safe for concurrent use.
type Message struct {
	description    *string
	providerStates []ProviderState
	contents       *string
	metadata       *MetadataMap
	matchingRules  json.RawMessage
}

// NewMessage creates an empty message
func NewMessage() *Message {
	return &Message{metadata: NewMetadataMap()}
}

// Description returns the description and whether one is set
func (m *Message) Description() (string, bool) {
	if m.description == nil {
		return "", false
	}
	return *m.description, true
}

// SetDescription replaces the description
func (m *Message) SetDescription(description string) {
	m.description = &description
}

// Contents returns the contents text and whether contents are set
func (m *Message) Contents() (string, bool) {
	if m.contents == nil {
		return "", false
	}
	return *m.contents, true
}

// SetContents replaces the contents
func (m *Message) SetContents(contents string) {
	m.contents = &contents
}

// ProviderState returns a copy of the state at index
func (m *Message) ProviderState(index int) (ProviderState, bool) {
	if index < 0 || index >= len(m.providerStates) {
		return ProviderState{}, false
	}
	return m.providerStates[index].clone(), true
}

// ProviderStates returns copies of all states in order
func (m *Message) ProviderStates() []ProviderState {
	out := make([]ProviderState, len(m.providerStates))
	for i, ps := range m.providerStates {
		out[i] = ps.clone()
	}
	return out
}

// AddProviderState appends a state
func (m *Message) AddProviderState(ps ProviderState) {
	m.providerStates = append(m.providerStates, ps.clone())
}

// Metadata returns the message's metadata map
func (m *Message) Metadata() *MetadataMap {
	return m.metadata
}

// MatchingRules returns the matching rules as compact JSON, or "" when absent
func (m *Message) MatchingRules() string {
	return string(m.matchingRules)
}

// NewMessageFromJSON builds a message from a JSON object. index names the
// message when the document has no description; spec selects which
// provider state field wins when both forms are present.
func NewMessageFromJSON(index uint32, data []byte, spec Specification) (*Message, error) {
	if !json.Valid(data) {
		return nil, fmtErrorf("document is not valid JSON: %w", ErrDeserialization)
	}

	_, fields, err := decodeObject(data)
	if err != nil {
		return nil, fmtErrorf("document: %w", err)
	}

	m := NewMessage()

	if raw, ok := fields["description"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			m.SetDescription(s)
		} else {
			m.SetDescription(compactJSON(raw))
		}
	} else {
		m.SetDescription(fmt.Sprintf("Message %d", index))
	}

	states, err := decodeProviderStates(fields, spec)
	if err != nil {
		return nil, err
	}
	m.providerStates = states

	if raw, ok := fields["contents"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			m.SetContents(s)
		} else {
			m.SetContents(compactJSON(raw))
		}
	}

	for _, name := range []string{"metadata", "metaData"} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := decodeMetadata(raw, m.metadata); err != nil {
			return nil, fmtErrorf("field '%s': %w", name, err)
		}
		break
	}

	if raw, ok := fields["matchingRules"]; ok && !isJSONNull(raw) {
		if !isJSONObject(raw) {
			return nil, fmtErrorf("field 'matchingRules' must be an object: %w", ErrDeserialization)
		}
		m.matchingRules = json.RawMessage(compactJSON(raw))
	}

	return m, nil
}

// decodeProviderStates reads "providerStates" (array of {name, params}) and
// "providerState" (string)
func decodeProviderStates(fields map[string]json.RawMessage, spec Specification) ([]ProviderState, error) {
	plural, hasPlural := fields["providerStates"]
	singular, hasSingular := fields["providerState"]

	if hasPlural && (spec.prefersPluralStates() || !hasSingular) {
		var entries []json.RawMessage
		if err := json.Unmarshal(plural, &entries); err != nil {
			return nil, fmtErrorf("field 'providerStates' must be an array: %w", ErrDeserialization)
		}
		states := make([]ProviderState, 0, len(entries))
		for i, entry := range entries {
			ps, err := decodeProviderState(entry)
			if err != nil {
				return nil, fmtErrorf("providerStates[%d]: %w", i, err)
			}
			states = append(states, ps)
		}
		return states, nil
	}

	if hasSingular {
		if bytes.Equal(bytes.TrimSpace(singular), []byte("null")) {
			return nil, nil
		}
		var name string
		if err := json.Unmarshal(singular, &name); err != nil {
			return nil, fmtErrorf("field 'providerState' must be a string: %w", ErrDeserialization)
		}
		return []ProviderState{{Name: name}}, nil
	}

	return nil, nil
}

func decodeProviderState(raw json.RawMessage) (ProviderState, error) {
	_, fields, err := decodeObject(raw)
	if err != nil {
		return ProviderState{}, err
	}

	var ps ProviderState
	nameRaw, ok := fields["name"]
	if !ok || json.Unmarshal(nameRaw, &ps.Name) != nil {
		return ProviderState{}, fmt.Errorf("provider state needs a string 'name': %w", ErrDeserialization)
	}

	if paramsRaw, ok := fields["params"]; ok && !isJSONNull(paramsRaw) {
		if !isJSONObject(paramsRaw) {
			return ProviderState{}, fmt.Errorf("provider state 'params' must be an object: %w", ErrDeserialization)
		}
		dec := json.NewDecoder(bytes.NewReader(paramsRaw))
		dec.UseNumber()
		if err := dec.Decode(&ps.Params); err != nil {
			return ProviderState{}, fmt.Errorf("provider state 'params': %v: %w", err, ErrDeserialization)
		}
	}
	return ps, nil
}

// decodeMetadata inserts an object's entries in document order. Non-string
// values are stored as their JSON text.
func decodeMetadata(raw json.RawMessage, dst *MetadataMap) error {
	if isJSONNull(raw) {
		return nil
	}
	keys, fields, err := decodeObject(raw)
	if err != nil {
		return err
	}
	for _, k := range keys {
		v := fields[k]
		var s string
		if json.Unmarshal(v, &s) != nil {
			s = compactJSON(v)
		}
		if err := dst.Insert(k, s); err != nil {
			return err
		}
	}
	return nil
}

// decodeObject splits a JSON object into its members. keys lists each member
// once in document order; a repeated key keeps its last value.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrDeserialization)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object: %w", ErrDeserialization)
	}

	var keys []string
	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%v: %w", err, ErrDeserialization)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected an object key: %w", ErrDeserialization)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("member '%s': %v: %w", key, err, ErrDeserialization)
		}
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrDeserialization)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("trailing data after object: %w", ErrDeserialization)
	}
	return keys, fields, nil
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
