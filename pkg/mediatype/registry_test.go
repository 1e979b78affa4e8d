package mediatype_test

import (
	"testing"

	"github.com/fivetwenty-io/restfully/pkg/mediatype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Find(t *testing.T) {
	t.Parallel()

	t.Run("most specific signature wins", func(t *testing.T) {
		t.Parallel()

		registry, err := mediatype.NewRegistry(mediatype.Wildcard(), mediatype.JSON(), mediatype.Grid5000())
		require.NoError(t, err)

		mt := registry.Find("application/vnd.grid5000+json; charset=utf-8")
		require.NotNil(t, mt)
		assert.Equal(t, mediatype.NameGrid5000, mt.Name())

		mt = registry.Find("application/vnd.other+json")
		require.NotNil(t, mt)
		assert.Equal(t, mediatype.NameJSON, mt.Name())

		mt = registry.Find("image/png")
		require.NotNil(t, mt)
		assert.Equal(t, mediatype.NameWildcard, mt.Name())
	})

	t.Run("registration order does not change specificity", func(t *testing.T) {
		t.Parallel()

		registry, err := mediatype.NewRegistry(mediatype.Grid5000(), mediatype.JSON(), mediatype.Wildcard())
		require.NoError(t, err)

		assert.Equal(t, mediatype.NameGrid5000, registry.Find("application/vnd.fr.grid5000.api.site+json").Name())
		assert.Equal(t, mediatype.NameJSON, registry.Find("application/json").Name())
	})

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()

		registry := &mediatype.Registry{}
		assert.Nil(t, registry.Find("application/json"))
	})

	t.Run("wildcard matches nonsense", func(t *testing.T) {
		t.Parallel()

		registry, err := mediatype.NewRegistry(mediatype.Wildcard())
		require.NoError(t, err)

		mt := registry.Find("whatever/nonsense")
		require.NotNil(t, mt)
		assert.Equal(t, mediatype.NameWildcard, mt.Name())
	})

	t.Run("empty candidates", func(t *testing.T) {
		t.Parallel()

		registry := mediatype.DefaultRegistry()
		assert.Nil(t, registry.Find(""))
		assert.Nil(t, registry.Find())
	})

	t.Run("accept header lists and case", func(t *testing.T) {
		t.Parallel()

		registry, err := mediatype.NewRegistry(mediatype.JSON(), mediatype.XML())
		require.NoError(t, err)

		mt := registry.Find("Text/XML;q=0.9, image/png")
		require.NotNil(t, mt)
		assert.Equal(t, mediatype.NameXML, mt.Name())
	})

	t.Run("must find reports missing parser", func(t *testing.T) {
		t.Parallel()

		registry, err := mediatype.NewRegistry(mediatype.JSON())
		require.NoError(t, err)

		_, err = registry.MustFind("image/png")
		require.ErrorIs(t, err, mediatype.ErrParserNotFound)
	})
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("requires a signature", func(t *testing.T) {
		t.Parallel()

		registry := &mediatype.Registry{}
		err := registry.Register(mediatype.New("broken", mediatype.JSON().Parser(), nil))
		require.ErrorIs(t, err, mediatype.ErrConfiguration)
		require.ErrorIs(t, err, mediatype.ErrNoSignature)
	})

	t.Run("requires a parser", func(t *testing.T) {
		t.Parallel()

		registry := &mediatype.Registry{}
		err := registry.Register(mediatype.New("broken", nil, nil, "text/broken"))
		require.ErrorIs(t, err, mediatype.ErrConfiguration)
		require.ErrorIs(t, err, mediatype.ErrNoParser)
	})

	t.Run("same name replaces", func(t *testing.T) {
		t.Parallel()

		registry := mediatype.DefaultRegistry()
		before := len(registry.Types())

		replacement := mediatype.New(mediatype.NameJSON, mediatype.JSON().Parser(), nil, "application/json")
		require.NoError(t, registry.Register(replacement))

		assert.Len(t, registry.Types(), before)

		mt, ok := registry.Lookup(mediatype.NameJSON)
		require.True(t, ok)
		assert.Same(t, replacement, mt)
	})

	t.Run("unregister and reset", func(t *testing.T) {
		t.Parallel()

		registry := mediatype.DefaultRegistry()
		registry.Unregister(mediatype.NameWildcard)

		_, ok := registry.Lookup(mediatype.NameWildcard)
		assert.False(t, ok)
		assert.Nil(t, registry.Find("image/png"))

		registry.Reset()
		assert.Equal(t, mediatype.NameWildcard, registry.Find("image/png").Name())
	})
}

func TestBuiltin(t *testing.T) {
	t.Parallel()

	for _, name := range mediatype.BuiltinNames() {
		mt, err := mediatype.Builtin(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, mt.Name())
		assert.NotEmpty(t, mt.DefaultType())
	}

	_, err := mediatype.Builtin("bogus")
	require.ErrorIs(t, err, mediatype.ErrUnknownMediaType)
}

func TestMediaType_Supports(t *testing.T) {
	t.Parallel()

	mt := mediatype.JSON()

	signature, ok := mt.Supports("application/hal+json")
	assert.True(t, ok)
	assert.Equal(t, "application/*+json", signature)

	_, ok = mt.Supports("application/jsonx")
	assert.False(t, ok)

	_, ok = mt.Supports("xapplication/json")
	assert.False(t, ok)
}
