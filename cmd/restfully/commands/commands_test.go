package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandDefinitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewGetCommand(), "get [PATH]", []string{"query", "follow", "header", "reload"}},
		{NewLinksCommand(), "links [PATH]", []string{"query", "follow", "header", "reload"}},
		{NewItemsCommand(), "items [PATH]", []string{"query", "follow", "all", "limit"}},
		{NewFindCommand(), "find PATH ID", []string{"query", "follow"}},
		{NewSubmitCommand(), "submit [PATH]", []string{"data", "file", "content-type", "follow"}},
		{NewUpdateCommand(), "update [PATH]", []string{"data", "file", "content-type"}},
		{NewDeleteCommand(), "delete PATH", []string{"follow"}},
		{NewTypesCommand(), "types", nil},
		{NewVersionCommand("1.2.3", "abc", "today"), "version", nil},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short)
			assert.NotEmpty(t, tt.cmd.Long)
			assert.NotNil(t, tt.cmd.RunE)
			assert.NotNil(t, tt.cmd.Args)

			for _, flagName := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
			}
		})
	}

	follow := NewGetCommand().Flags().Lookup("follow")
	assert.Equal(t, "l", follow.Shorthand)
}

const (
	cliRoot = `{"uid":"root","links":[
		{"rel":"self","href":"/"},
		{"rel":"collection","href":"/sites","title":"sites","type":"application/json"}
	]}`
	cliSites = `{"total":2,"offset":0,"allow":["GET","POST"],"items":[
		{"uid":"nancy","links":[{"rel":"self","href":"/sites/nancy"}]},
		{"uid":"rennes","links":[{"rel":"self","href":"/sites/rennes"}]}
	],"links":[{"rel":"self","href":"/sites"}]}`
)

func newCLIServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	serve := func(body string) http.HandlerFunc {
		return func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(body))
		}
	}

	mux.HandleFunc("GET /{$}", serve(cliRoot))
	mux.HandleFunc("GET /sites", serve(cliSites))
	mux.HandleFunc("GET /sites/rennes", serve(`{"uid":"rennes","description":"Rennes, Brittany"}`))
	mux.HandleFunc("GET /sites/lille", serve(`{"uid":"lille","state":"building"}`))
	mux.HandleFunc("POST /sites", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Location", "/sites/lille")
		writer.WriteHeader(http.StatusCreated)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

// run executes cmd against the API at uri and returns its output.
func run(t *testing.T, cmd *cobra.Command, uri, output string, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("uri", uri)
	viper.Set("output", output)

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{}, args...))

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

//nolint:funlen
func TestCommands(t *testing.T) {
	server := newCLIServer(t)

	t.Run("links", func(t *testing.T) {
		out, err := run(t, NewLinksCommand(), server.URL, "table")
		require.NoError(t, err)
		assert.Contains(t, out, "sites")
		assert.Contains(t, out, "/sites")
		assert.Contains(t, out, "application/json")
	})

	t.Run("get", func(t *testing.T) {
		out, err := run(t, NewGetCommand(), server.URL, "json", "--follow", "sites")
		require.NoError(t, err)

		var value map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &value))
		assert.InDelta(t, 2, value["total"], 0)
	})

	t.Run("items", func(t *testing.T) {
		out, err := run(t, NewItemsCommand(), server.URL, "table", "/sites", "--limit", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "nancy")
		assert.NotContains(t, out, "rennes")

		_, err = run(t, NewItemsCommand(), server.URL, "table")
		require.ErrorIs(t, err, ErrNotACollection)
	})

	t.Run("find", func(t *testing.T) {
		out, err := run(t, NewFindCommand(), server.URL, "yaml", "/sites", "rennes")
		require.NoError(t, err)
		assert.Contains(t, out, "uid: rennes")

		_, err = run(t, NewFindCommand(), server.URL, "yaml", "/sites", "paris")
		require.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("submit", func(t *testing.T) {
		out, err := run(t, NewSubmitCommand(), server.URL, "json", "/sites", "--data", "uid: lille")
		require.NoError(t, err)
		assert.Contains(t, out, `"state": "building"`)

		_, err = run(t, NewSubmitCommand(), server.URL, "json", "/sites")
		require.ErrorIs(t, err, ErrPayloadRequired)
	})

	t.Run("types", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		viper.Set("output", "table")
		viper.Set("media_types", []string{"xml"})

		var out bytes.Buffer

		cmd := NewTypesCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{})
		require.NoError(t, cmd.Execute())

		assert.Contains(t, out.String(), "wildcard")
		assert.Contains(t, out.String(), "application/xml")
	})

	t.Run("version", func(t *testing.T) {
		out, err := run(t, NewVersionCommand("1.2.3", "abc", "today"), "", "json")
		require.NoError(t, err)

		var info VersionInfo
		require.NoError(t, json.Unmarshal([]byte(out), &info))
		assert.Equal(t, "1.2.3", info.Version)
		assert.Equal(t, "abc", info.Commit)
		assert.True(t, strings.HasPrefix(info.Library, "1."))
	})
}
