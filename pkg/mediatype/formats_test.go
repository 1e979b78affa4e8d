package mediatype_test

import (
	"net/url"
	"testing"

	"github.com/fivetwenty-io/restfully/pkg/mediatype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormURLEncoded(t *testing.T) {
	t.Parallel()

	mt := mediatype.FormURLEncoded()

	data, err := mt.Encode(map[string]any{
		"name": "job",
		"resources": map[string]any{
			"nodes": 2,
		},
		"tags": []any{"a", "b"},
	})
	require.NoError(t, err)

	values, err := url.ParseQuery(string(data))
	require.NoError(t, err)
	assert.Equal(t, "job", values.Get("name"))
	assert.Equal(t, "2", values.Get("resources[nodes]"))
	assert.Equal(t, []string{"a", "b"}, values["tags[]"])

	decoded, err := mt.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":      "job",
		"resources": map[string]any{"nodes": "2"},
		"tags":      []any{"a", "b"},
	}, decoded)
}

func TestFormURLEncoded_Struct(t *testing.T) {
	t.Parallel()

	payload := struct {
		Command string `json:"command"`
	}{Command: "sleep 3600"}

	data, err := mediatype.FormURLEncoded().Encode(payload)
	require.NoError(t, err)
	assert.Equal(t, "command=sleep+3600", string(data))

	_, err = mediatype.FormURLEncoded().Encode([]int{1})
	require.ErrorIs(t, err, mediatype.ErrUnsupportedValue)
}

func TestYAML(t *testing.T) {
	t.Parallel()

	doc := mediatype.YAML().NewDocument([]byte(`
uid: rennes
nodes: 3
links:
  - rel: self
    href: /sites/rennes
  - rel: collection
    href: /sites/rennes/clusters
    title: clusters
    type: application/x-yaml
`))

	require.NoError(t, doc.Err())
	assert.True(t, doc.Represents("rennes"))

	nodes, ok := doc.Property("nodes")
	require.True(t, ok)
	assert.Equal(t, 3, nodes)

	links := doc.Links()
	require.Len(t, links, 2)
	assert.Equal(t, "clusters", links[1].ID())
	assert.Equal(t, "application/x-yaml", links[1].Type())
}

const xmlCollection = `<?xml version="1.0"?>
<experiments href="/experiments">
  <link rel="parent" href="/"/>
  <items total="2" offset="0">
    <experiment href="/experiments/1"><name>first</name><uid>1</uid></experiment>
    <experiment href="/experiments/2"><name>second</name><uid>2</uid></experiment>
  </items>
</experiments>`

func TestXML_Collection(t *testing.T) {
	t.Parallel()

	doc := mediatype.XML().NewDocument([]byte(xmlCollection))
	require.NoError(t, doc.Err())

	assert.True(t, doc.IsCollection())

	links := doc.Links()
	require.Len(t, links, 2)
	assert.True(t, links[0].IsSelf())
	assert.Equal(t, "/experiments", links[0].Href)
	assert.Equal(t, "parent", links[1].Rel)

	_, hidden := doc.Property("__type__")
	assert.False(t, hidden)

	items, err := doc.Items()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[1].Represents("2"))

	name, ok := items[0].Property("name")
	require.True(t, ok)
	assert.Equal(t, "first", name)
	require.Len(t, items[0].Links(), 1)
	assert.Equal(t, "/experiments/1", items[0].Links()[0].Href)
}

func TestXML_Stub(t *testing.T) {
	t.Parallel()

	doc := mediatype.XML().NewDocument([]byte(`<experiment href="/experiments/1"/>`))
	require.NoError(t, doc.Err())
	assert.False(t, doc.IsComplete())

	doc = mediatype.XML().NewDocument([]byte(`<experiment href="/experiments/1"><name>x</name></experiment>`))
	assert.True(t, doc.IsComplete())
}

func TestXML_EncodeRoundTrip(t *testing.T) {
	t.Parallel()

	mt := mediatype.XML()

	value, err := mt.Decode([]byte(xmlCollection))
	require.NoError(t, err)

	data, err := mt.Encode(value)
	require.NoError(t, err)

	again, err := mt.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, value, again)
}
