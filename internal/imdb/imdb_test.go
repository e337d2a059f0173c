package imdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, html)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTitleFromOGTag(t *testing.T) {
	srv := serve(t, `<html><head>
		<meta property="og:title" content="Dune: Part Two (2024) - IMDb"/>
		</head><body><h1>wrong</h1></body></html>`)

	title, err := NewClient().Title(context.Background(), srv.URL+"/title/tt15239678/")
	require.NoError(t, err)
	assert.Equal(t, "Dune: Part Two (2024)", title)
}

func TestTitleFallsBackToHeading(t *testing.T) {
	srv := serve(t, `<html><body><h1> The Wire </h1><h1>other</h1></body></html>`)

	title, err := NewClient().Title(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "The Wire", title)
}

func TestTitleMissing(t *testing.T) {
	srv := serve(t, `<html><body><p>nothing here</p></body></html>`)

	_, err := NewClient().Title(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNoTitle)
}

func TestTitleHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient().Title(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
