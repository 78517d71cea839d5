package pactffi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	m := NewMessage()

	_, ok := m.Description()
	assert.False(t, ok)
	_, ok = m.Contents()
	assert.False(t, ok)
	_, ok = m.ProviderState(0)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Metadata().Len())
	assert.Equal(t, "", m.MatchingRules())

	m.SetDescription("")
	desc, ok := m.Description()
	assert.True(t, ok, "empty description is still set")
	assert.Equal(t, "", desc)
}

func TestMessageFromJSON(t *testing.T) {
	doc := `{
		"description": "an order event",
		"providerStates": [
			{"name": "order exists", "params": {"id": 42, "status": "new"}},
			{"name": "user logged in"}
		],
		"contents": {"orderId": 42},
		"metadata": {"contentType": "application/json", "retries": 3, "nested": {"a": [1, 2]}},
		"matchingRules": {"body": {"$.orderId": {"match": "type"}}}
	}`

	m, err := NewMessageFromJSON(0, []byte(doc), SpecV3)
	require.NoError(t, err)

	desc, ok := m.Description()
	require.True(t, ok)
	assert.Equal(t, "an order event", desc)

	contents, ok := m.Contents()
	require.True(t, ok)
	assert.JSONEq(t, `{"orderId":42}`, contents)

	states := m.ProviderStates()
	require.Len(t, states, 2)
	assert.Equal(t, "order exists", states[0].Name)
	assert.Equal(t, json.Number("42"), states[0].Params["id"])
	assert.Equal(t, []ProviderStateParam{
		{Key: "id", Value: "42"},
		{Key: "status", Value: `"new"`},
	}, states[0].SortedParams())
	assert.Equal(t, "user logged in", states[1].Name)
	assert.Nil(t, states[1].Params)

	assert.Equal(t, []MetadataPair{
		{Key: "contentType", Value: "application/json"},
		{Key: "retries", Value: "3"},
		{Key: "nested", Value: `{"a":[1,2]}`},
	}, m.Metadata().Snapshot(), "metadata keeps document order")

	assert.Equal(t, `{"body":{"$.orderId":{"match":"type"}}}`, m.MatchingRules())
}

func TestMessageFromJSONDefaults(t *testing.T) {
	m, err := NewMessageFromJSON(7, []byte(`{}`), SpecUnknown)
	require.NoError(t, err)

	desc, ok := m.Description()
	require.True(t, ok)
	assert.Equal(t, "Message 7", desc)

	_, ok = m.Contents()
	assert.False(t, ok)
	assert.Empty(t, m.ProviderStates())

	m, err = NewMessageFromJSON(0, []byte(`{"description": 12, "contents": "plain text"}`), SpecV3)
	require.NoError(t, err)
	desc, _ = m.Description()
	assert.Equal(t, "12", desc)
	contents, _ := m.Contents()
	assert.Equal(t, "plain text", contents)
}

func TestMessageProviderStateForms(t *testing.T) {
	both := []byte(`{"providerState": "legacy", "providerStates": [{"name": "modern"}]}`)

	tests := []struct {
		name string
		doc  []byte
		spec Specification
		want []string
	}{
		{"v3 prefers plural", both, SpecV3, []string{"modern"}},
		{"v4 prefers plural", both, SpecV4, []string{"modern"}},
		{"unknown prefers plural", both, SpecUnknown, []string{"modern"}},
		{"v2 prefers singular", both, SpecV2, []string{"legacy"}},
		{"v2 falls back to plural", []byte(`{"providerStates": [{"name": "only"}]}`), SpecV2, []string{"only"}},
		{"v3 falls back to singular", []byte(`{"providerState": "only"}`), SpecV3, []string{"only"}},
		{"null singular", []byte(`{"providerState": null}`), SpecV1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMessageFromJSON(0, tt.doc, tt.spec)
			require.NoError(t, err)
			var names []string
			for _, ps := range m.ProviderStates() {
				names = append(names, ps.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestMessageFromJSONRejects(t *testing.T) {
	docs := map[string]string{
		"not json":             `{"description": `,
		"array":                `[1, 2]`,
		"scalar":               `"text"`,
		"trailing data":        `{} {}`,
		"empty":                ``,
		"states not array":     `{"providerStates": {"name": "x"}}`,
		"state without name":   `{"providerStates": [{"params": {}}]}`,
		"state params scalar":  `{"providerStates": [{"name": "x", "params": 3}]}`,
		"singular not string":  `{"providerState": 5}`,
		"metadata not object":  `{"metadata": ["a"]}`,
		"matching rules array": `{"matchingRules": []}`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := NewMessageFromJSON(0, []byte(doc), SpecV3)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDeserialization), "got %v", err)
		})
	}
}

func TestMessageMetaDataAlias(t *testing.T) {
	m, err := NewMessageFromJSON(0, []byte(`{"metaData": {"destination": "orders"}}`), SpecV3)
	require.NoError(t, err)
	v, ok := m.Metadata().Find("destination")
	assert.True(t, ok)
	assert.Equal(t, "orders", v)

	m, err = NewMessageFromJSON(0, []byte(`{"metadata": {"a": "1"}, "metaData": {"b": "2"}}`), SpecV3)
	require.NoError(t, err)
	_, ok = m.Metadata().Find("b")
	assert.False(t, ok, "metadata wins over metaData")
}

func TestMessageProviderStateCopies(t *testing.T) {
	m := NewMessage()
	m.AddProviderState(ProviderState{Name: "s", Params: map[string]any{"k": "v"}})

	ps, ok := m.ProviderState(0)
	require.True(t, ok)
	ps.Params["k"] = "changed"
	ps.Name = "renamed"

	again, _ := m.ProviderState(0)
	assert.Equal(t, "s", again.Name)
	assert.Equal(t, "v", again.Params["k"], "callers never share the message's params")

	_, ok = m.ProviderState(-1)
	assert.False(t, ok)
	_, ok = m.ProviderState(1)
	assert.False(t, ok)
}

func TestMetadataMapInsertOnce(t *testing.T) {
	m := NewMetadataMap()

	require.NoError(t, m.Insert("k", "first"))
	err := m.Insert("k", "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKeyExists))
	assert.Equal(t, InsertKeyExists, InsertStatusOf(err))

	v, ok := m.Find("k")
	assert.True(t, ok)
	assert.Equal(t, "first", v, "collision keeps the prior value")
	assert.Equal(t, 1, m.Len())

	_, ok = m.Find("absent")
	assert.False(t, ok)

	require.NoError(t, m.Insert("", "empty key allowed"))
	assert.Equal(t, []MetadataPair{{"k", "first"}, {"", "empty key allowed"}}, m.Snapshot())
}

func TestMetadataIteratorSnapshot(t *testing.T) {
	m := NewMetadataMap()
	require.NoError(t, m.Insert("a", "1"))
	require.NoError(t, m.Insert("b", "2"))

	it := NewMetadataIterator(m)
	require.NoError(t, m.Insert("c", "3"))
	assert.Equal(t, 2, it.Remaining())

	p, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, MetadataPair{"a", "1"}, p)
	p, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, MetadataPair{"b", "2"}, p)

	for i := 0; i < 3; i++ {
		_, ok = it.Next()
		assert.False(t, ok, "exhausted iterator stays exhausted")
	}
	assert.Equal(t, 0, it.Remaining())

	empty := NewMetadataIterator(NewMetadataMap())
	_, ok = empty.Next()
	assert.False(t, ok)
}

func TestProviderStateIterator(t *testing.T) {
	m := NewMessage()
	m.AddProviderState(ProviderState{Name: "first"})
	m.AddProviderState(ProviderState{Name: "second", Params: map[string]any{"n": 1}})

	it := NewProviderStateIterator(m)
	m.AddProviderState(ProviderState{Name: "later"})

	var names []string
	for {
		ps, ok := it.Next()
		if !ok {
			break
		}
		names = append(names, ps.Name)
	}
	assert.Equal(t, []string{"first", "second"}, names)
	_, ok := it.Next()
	assert.False(t, ok)
}

func TestSpecificationString(t *testing.T) {
	assert.Equal(t, "V3", SpecV3.String())
	assert.True(t, SpecV4.prefersPluralStates())
	assert.False(t, SpecV1_1.prefersPluralStates())
}
