package restfully_test

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/fivetwenty-io/restfully/pkg/restfully"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	itemsTotal = 20
	itemsLimit = 8
)

// newItemsAPI serves itemsTotal items, itemsLimit per page.
func newItemsAPI(t *testing.T) *api {
	t.Helper()

	server := newAPI(t)
	server.handle("GET /items", func(writer http.ResponseWriter, request *http.Request) {
		offset, _ := strconv.Atoi(request.URL.Query().Get("offset"))
		writeJSON(writer, http.StatusOK, page(itemsTotal, offset, itemsLimit))
	})
	server.handle("GET /items/{id}", func(writer http.ResponseWriter, request *http.Request) {
		id := request.PathValue("id")

		n, err := strconv.Atoi(strings.TrimPrefix(id, "item-"))
		if err != nil || n >= itemsTotal {
			http.NotFound(writer, request)

			return
		}

		writeJSON(writer, http.StatusOK, fmt.Sprintf(
			`{"uid":"%s","links":[{"rel":"self","href":"/items/%s"}]}`, id, id))
	})

	return server
}

func getItems(t *testing.T, session *restfully.Session) *restfully.Collection {
	t.Helper()

	items, err := session.Get(context.Background(), "/items", nil)
	require.NoError(t, err)
	require.True(t, items.IsCollection())

	return items.Collection()
}

func TestCollection_Page(t *testing.T) {
	t.Parallel()

	server := newItemsAPI(t)
	items := getItems(t, newSession(t, server.URL))

	assert.Equal(t, itemsTotal, items.Total())
	assert.Equal(t, 0, items.Offset())
	assert.Equal(t, itemsLimit, items.Len())
	assert.False(t, items.Empty())
	assert.False(t, items.SeenAll())
	assert.Same(t, items, items.Resource().Collection())

	last, err := items.At(context.Background(), -1)
	require.NoError(t, err)
	assert.Equal(t, "item-7", last.Properties()["uid"])
	assert.Equal(t, 1, server.hits())
}

//nolint:funlen
func TestCollection_Find(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("walks the next pages", func(t *testing.T) {
		t.Parallel()

		server := newItemsAPI(t)
		items := getItems(t, newSession(t, server.URL))

		item, err := items.Find(ctx, "item-18")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "item-18", item.Properties()["uid"])
		assert.Equal(t, []string{"GET /items", "GET /items?offset=8", "GET /items?offset=16"}, server.requestLog())
		assert.True(t, items.SeenAll())

		again, err := items.Find(ctx, "item-18")
		require.NoError(t, err)
		assert.Same(t, item, again)

		_, err = items.Find(ctx, "item-3")
		require.NoError(t, err)
		assert.Equal(t, 3, server.hits())
	})

	t.Run("returns nil for an unknown id", func(t *testing.T) {
		t.Parallel()

		server := newItemsAPI(t)
		items := getItems(t, newSession(t, server.URL))

		item, err := items.Find(ctx, "item-99")
		require.NoError(t, err)
		assert.Nil(t, item)
		assert.Equal(t, 3, server.hits())

		item, err = items.Find(ctx, "item-99")
		require.NoError(t, err)
		assert.Nil(t, item)
		assert.Equal(t, 3, server.hits())
	})

	t.Run("guesses item URIs", func(t *testing.T) {
		t.Parallel()

		server := newItemsAPI(t)
		session := newSession(t, server.URL, func(c *restfully.Config) { c.GuessItemURIs = true })
		items := getItems(t, session)

		item, err := items.Find(ctx, "item-13")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, server.URL+"/items/item-13", item.URI())
		assert.Equal(t, []string{"GET /items", "GET /items/item-13"}, server.requestLog())
	})

	t.Run("falls back to walking when the guess misses", func(t *testing.T) {
		t.Parallel()

		server := newItemsAPI(t)
		session := newSession(t, server.URL, func(c *restfully.Config) { c.GuessItemURIs = true })
		items := getItems(t, session)

		item, err := items.Find(ctx, "item-42")
		require.NoError(t, err)
		assert.Nil(t, item)
		assert.Equal(t, []string{
			"GET /items",
			"GET /items/item-42",
			"GET /items?offset=8",
			"GET /items?offset=16",
		}, server.requestLog())
	})

	t.Run("walks instead of guessing ids that are not a path segment", func(t *testing.T) {
		t.Parallel()

		for _, id := range []string{"..", ".", "a/b", "../secret"} {
			server := newItemsAPI(t)
			session := newSession(t, server.URL, func(c *restfully.Config) { c.GuessItemURIs = true })
			items := getItems(t, session)

			item, err := items.Find(ctx, id)
			require.NoError(t, err, id)
			assert.Nil(t, item, id)
			assert.Equal(t, []string{
				"GET /items",
				"GET /items?offset=8",
				"GET /items?offset=16",
			}, server.requestLog(), id)
		}
	})
}

func TestCollection_All(t *testing.T) {
	t.Parallel()

	server := newItemsAPI(t)
	items := getItems(t, newSession(t, server.URL))
	ctx := context.Background()

	var seen []string

	err := items.All(ctx, func(item *restfully.Resource) bool {
		seen = append(seen, item.Properties()["uid"].(string))

		return true
	})
	require.NoError(t, err)
	require.Len(t, seen, itemsTotal)
	assert.Equal(t, "item-0", seen[0])
	assert.Equal(t, "item-19", seen[itemsTotal-1])
	assert.Equal(t, 3, server.hits())

	var pages []int

	err = items.Pages(ctx, func(page *restfully.Collection) bool {
		pages = append(pages, page.Offset())

		return len(pages) < 2
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 8}, pages)
	assert.Equal(t, 3, server.hits())

	count := 0

	err = items.All(ctx, func(item *restfully.Resource) bool {
		count++

		return count < 10
	})
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestCollection_ItemsWithoutSelfLink(t *testing.T) {
	t.Parallel()

	server := newAPI(t)
	server.json("GET /mixed", `{"total":3,"offset":0,"items":[
		{"uid":"a","links":[{"rel":"self","href":"/mixed/a"}]},
		{"uid":"b"},
		{"uid":"c","links":[{"rel":"self","href":"/mixed/c"}]}
	]}`)

	logger := &MockLogger{}
	session := newSession(t, server.URL, func(c *restfully.Config) { c.Logger = logger })

	mixed, err := session.Get(context.Background(), "/mixed", nil)
	require.NoError(t, err)

	collection := mixed.Collection()
	require.NotNil(t, collection)
	assert.Equal(t, 2, collection.Len())
	assert.Equal(t, 3, collection.Total())
	assert.Contains(t, logger.messages("warn"), "Collection item without self link skipped")
}

func TestCollection_Empty(t *testing.T) {
	t.Parallel()

	server := newAPI(t)
	server.json("GET /unlinked", `{"total":9,"offset":0,"items":[{"uid":"a"},{"uid":"b"}]}`)
	server.json("GET /drained", `{"total":0,"offset":0,"items":[
		{"uid":"a","links":[{"rel":"self","href":"/drained/a"}]}
	]}`)

	session := newSession(t, server.URL)
	ctx := context.Background()

	unlinked, err := session.Get(ctx, "/unlinked", nil)
	require.NoError(t, err)
	require.NotNil(t, unlinked.Collection())
	assert.Equal(t, 0, unlinked.Collection().Len())
	assert.Equal(t, 9, unlinked.Collection().Total())
	assert.False(t, unlinked.Collection().Empty())

	drained, err := session.Get(ctx, "/drained", nil)
	require.NoError(t, err)
	require.NotNil(t, drained.Collection())
	assert.Equal(t, 1, drained.Collection().Len())
	assert.True(t, drained.Collection().Empty())
}
