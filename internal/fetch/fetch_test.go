package fetch_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/paveg/tabprep/internal/config"
	dferrors "github.com/paveg/tabprep/internal/errors"
	"github.com/paveg/tabprep/internal/fetch"
	"github.com/paveg/tabprep/internal/logging"
	"github.com/paveg/tabprep/internal/version"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payload = bytes.Repeat([]byte("mnist"), 1024)

func newServer(t *testing.T, status int, body []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, version.UserAgent(), r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newFetcher(server *httptest.Server, fs afero.Fs, opts ...fetch.Option) *fetch.Fetcher {
	cfg := config.FetchConfig{
		URL:  server.URL + "/_static/mnist.pkl.gz",
		Dir:  filepath.Join("data", "mnist"),
		File: "mnist.pkl.gz",
	}
	opts = append([]fetch.Option{fetch.WithFs(fs), fetch.WithHTTPClient(server.Client())}, opts...)
	return fetch.New(cfg, opts...)
}

func TestFetcher_Fetch(t *testing.T) {
	server, requests := newServer(t, http.StatusOK, payload)
	fs := afero.NewMemMapFs()

	var logs bytes.Buffer
	fetcher := newFetcher(server, fs, fetch.WithLogger(logging.New(logging.ModeInfo, &logs)))

	report, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("data", "mnist", "mnist.pkl.gz"), report.Path)
	assert.Equal(t, int64(len(payload)), report.Bytes)
	assert.Equal(t, xxhash.Sum64(payload), report.Digest)
	assert.Len(t, report.DigestHex(), 16)
	assert.Equal(t, int32(1), requests.Load())

	data, err := afero.ReadFile(fs, report.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	assert.Contains(t, logs.String(), `"message":"dataset downloaded"`)
	assert.Contains(t, logs.String(), `"size":"5.1 kB"`)
}

func TestFetcher_FileExists(t *testing.T) {
	server, requests := newServer(t, http.StatusOK, payload)
	fs := afero.NewMemMapFs()
	fetcher := newFetcher(server, fs)

	_, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, dferrors.ErrFileExists))
	assert.Contains(t, err.Error(), "file already exists")
	assert.Equal(t, int32(1), requests.Load(), "second fetch must not send a request")

	data, err := afero.ReadFile(fs, fetcher.Path())
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetcher_ExistingFileIsNotTouched(t *testing.T) {
	server, requests := newServer(t, http.StatusOK, payload)
	fs := afero.NewMemMapFs()
	fetcher := newFetcher(server, fs)

	require.NoError(t, afero.WriteFile(fs, fetcher.Path(), []byte("old"), 0o644))

	_, err := fetcher.Fetch(context.Background())
	require.ErrorIs(t, err, dferrors.ErrFileExists)
	assert.Zero(t, requests.Load())

	data, err := afero.ReadFile(fs, fetcher.Path())
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), data)
}

func TestFetcher_TransferFailure(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server, requests := newServer(t, status, []byte("nope"))
			fs := afero.NewMemMapFs()
			fetcher := newFetcher(server, fs)

			_, err := fetcher.Fetch(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, dferrors.ErrTransfer))
			assert.Contains(t, err.Error(), "unexpected status")
			assert.Equal(t, int32(1), requests.Load())

			exists, err := afero.Exists(fs, fetcher.Path())
			require.NoError(t, err)
			assert.False(t, exists)

			// the directory is still created
			dirExists, err := afero.DirExists(fs, filepath.Join("data", "mnist"))
			require.NoError(t, err)
			assert.True(t, dirExists)
		})
	}
}

func TestFetcher_Unreachable(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, payload)
	fetcher := newFetcher(server, afero.NewMemMapFs())
	server.Close()

	_, err := fetcher.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, dferrors.ErrTransfer))
}

func TestFetcher_Canceled(t *testing.T) {
	server, _ := newServer(t, http.StatusOK, payload)
	fetcher := newFetcher(server, afero.NewMemMapFs())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(err, dferrors.ErrTransfer))
}

func TestNew_Defaults(t *testing.T) {
	fetcher := fetch.New(config.FetchConfig{})
	assert.Equal(t, filepath.Join("data", "mnist", "mnist.pkl.gz"), fetcher.Path())
}
