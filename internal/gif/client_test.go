package gif

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	c := &client{apiKey: "test-key", httpClient: server.Client(), baseURL: server.URL}
	return c, server
}

func TestQueryFirstMatchReturnsTinygifURL(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "party-parrot", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"results":[{"media":[{"tinygif":{"url":"https://tenor.example/parrot.gif"}}]}]}`)
	})
	defer server.Close()

	url, err := c.QueryFirstMatch(context.Background(), "party-parrot")
	require.NoError(t, err)
	assert.Equal(t, "https://tenor.example/parrot.gif", url)
}

func TestQueryFirstMatchNoResults(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	})
	defer server.Close()

	url, err := c.QueryFirstMatch(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestQueryFirstMatchSkipsNonTinygifMedia(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"media":[{"mp4":{"url":"https://tenor.example/parrot.mp4"}}]}]}`)
	})
	defer server.Close()

	url, err := c.QueryFirstMatch(context.Background(), "party-parrot")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestQueryFirstMatchRejectsBadJSON(t *testing.T) {
	c, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})
	defer server.Close()

	_, err := c.QueryFirstMatch(context.Background(), "party-parrot")
	assert.Error(t, err)
}
