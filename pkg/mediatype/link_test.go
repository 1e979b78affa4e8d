package mediatype_test

import (
	"testing"

	"github.com/fivetwenty-io/restfully/pkg/mediatype"
	"github.com/stretchr/testify/assert"
)

func TestLink_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		link  mediatype.Link
		valid bool
	}{
		{"parent without title", mediatype.NewLink("parent", "/x", ""), true},
		{"member without title", mediatype.NewLink("member", "/x", ""), false},
		{"collection without title", mediatype.NewLink("collection", "/x", ""), false},
		{"collection with title", mediatype.NewLink("collection", "/x", "Sites"), true},
		{"empty href", mediatype.NewLink("self", "", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, tt.link.Valid())
			assert.Equal(t, tt.valid, len(tt.link.Errors()) == 0)
		})
	}
}

func TestLink_ID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "parent", mediatype.NewLink("parent", "/", "").ID())
	assert.Equal(t, "my_sites", mediatype.NewLink("collection", "/sites", "My Sites").ID())
	assert.Equal(t, "env_", mediatype.NewLink("collection", "/e", "Env-2").ID())

	link := mediatype.NewLink("collection", "/sites", "My Sites")
	link.ExplicitID = "all"
	assert.Equal(t, "all", link.ID())
}

func TestLink_Type(t *testing.T) {
	t.Parallel()

	assert.Empty(t, mediatype.NewLink("self", "/", "").Type())
	assert.Equal(t, "application/json", mediatype.NewLink("self", "/", "", "application/json", "text/xml").Type())
	assert.True(t, mediatype.NewLink("self", "/", "").IsSelf())
}
