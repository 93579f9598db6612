// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statsModuleSource = `/*! @module
{"name": "stats", "version": "2.0.0", "dependencies": []}
*/
`

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("probe and fetch", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			if r.Method != http.MethodHead {
				_, _ = w.Write([]byte(statsModuleSource))
			}
		}))
		defer server.Close()

		f := NewHTTPFetcher(DefaultHTTPOptions(), echoMaterializer{})
		url := server.URL + "/stats/index.js"

		require.NoError(t, f.Probe(ctx, url))

		mod, err := f.Fetch(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, "stats", mod.Name)
		assert.Equal(t, "2.0.0", mod.Version)
	})

	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		f := NewHTTPFetcher(DefaultHTTPOptions(), nil)
		err := f.Probe(ctx, server.URL+"/missing/index.js")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("server error maps to NetworkError", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		f := NewHTTPFetcher(DefaultHTTPOptions(), nil)
		_, err := f.Describe(ctx, server.URL+"/boom/index.js")
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, http.StatusInternalServerError, netErr.Status)
	})

	t.Run("probe falls back to GET when HEAD rejected", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			_, _ = w.Write([]byte(statsModuleSource))
		}))
		defer server.Close()

		f := NewHTTPFetcher(DefaultHTTPOptions(), nil)
		require.NoError(t, f.Probe(ctx, server.URL+"/stats/index.js"))
	})

	t.Run("describe then fetch costs one GET", func(t *testing.T) {
		t.Parallel()
		var gets atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				gets.Add(1)
			}
			_, _ = w.Write([]byte(statsModuleSource))
		}))
		defer server.Close()

		f := NewHTTPFetcher(DefaultHTTPOptions(), echoMaterializer{})
		url := server.URL + "/stats/index.js"

		_, err := f.Describe(ctx, url)
		require.NoError(t, err)
		_, err = f.Fetch(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, int32(1), gets.Load())
	})

	t.Run("custom headers are sent", func(t *testing.T) {
		t.Parallel()
		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(statsModuleSource))
		}))
		defer server.Close()

		opts := DefaultHTTPOptions()
		opts.Headers = map[string]string{"Authorization": "Bearer token123"}
		f := NewHTTPFetcher(opts, nil)
		_, err := f.Describe(ctx, server.URL+"/stats/index.js")
		require.NoError(t, err)
		assert.Equal(t, "Bearer token123", got)
	})

	t.Run("timeout surfaces as NetworkError", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(statsModuleSource))
		}))
		defer server.Close()

		opts := DefaultHTTPOptions()
		opts.Timeout = 20 * time.Millisecond
		f := NewHTTPFetcher(opts, nil)
		_, err := f.Describe(ctx, server.URL+"/slow/index.js")
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(statsModuleSource))
	}))
	defer server.Close()

	dir := t.TempDir()
	path := writeModuleFile(t, dir, "local.js", `/*! @module {"name": "local"} */`)

	r := Default(echoMaterializer{})

	t.Run("urls go to http", func(t *testing.T) {
		meta, err := r.Describe(ctx, server.URL+"/stats/index.js")
		require.NoError(t, err)
		assert.Equal(t, "stats", meta.Name)
	})

	t.Run("paths go to disk", func(t *testing.T) {
		meta, err := r.Describe(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "local", meta.Name)
	})
}
