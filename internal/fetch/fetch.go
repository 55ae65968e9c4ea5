// Package fetch downloads a dataset file once. A destination that already
// exists is never overwritten and no request is made for it.
package fetch

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/paveg/tabprep/internal/config"
	"github.com/paveg/tabprep/internal/errors"
	"github.com/paveg/tabprep/internal/logging"
	"github.com/paveg/tabprep/internal/version"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const opFetch = "fetch"

// Fetcher downloads one URL to one file
type Fetcher struct {
	url    string
	dir    string
	file   string
	fs     afero.Fs
	client *http.Client
	logger zerolog.Logger
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithFs sets the destination filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(f *Fetcher) {
		f.fs = fs
	}
}

// WithHTTPClient sets the HTTP client. The default is a pooled client from go-cleanhttp.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// Report describes a completed download
type Report struct {
	Path     string
	Bytes    int64
	Digest   uint64 // xxhash64 of the body
	Duration time.Duration
}

// DigestHex returns the digest as 16 hex digits
func (r Report) DigestHex() string {
	return fmt.Sprintf("%016x", r.Digest)
}

// New creates a Fetcher for cfg. Empty fields of cfg take their defaults.
func New(cfg config.FetchConfig, opts ...Option) *Fetcher {
	defaults := config.NewConfig().Fetch
	if cfg.URL == "" {
		cfg.URL = defaults.URL
	}
	if cfg.Dir == "" {
		cfg.Dir = defaults.Dir
	}
	if cfg.File == "" {
		cfg.File = defaults.File
	}

	f := &Fetcher{
		url:    cfg.URL,
		dir:    cfg.Dir,
		file:   cfg.File,
		fs:     afero.NewOsFs(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = cleanhttp.DefaultPooledClient()
	}
	return f
}

// Path returns the destination file path
func (f *Fetcher) Path() string {
	return filepath.Join(f.dir, f.file)
}

// Fetch creates the destination directory, then downloads the URL into the
// destination file. It fails with errors.ErrFileExists, before any request,
// when the file is already there, and with errors.ErrTransfer when the request
// fails or answers with a non-2xx status. A failed transfer leaves no file
// behind.
func (f *Fetcher) Fetch(ctx context.Context) (Report, error) {
	path := f.Path()

	if err := f.fs.MkdirAll(f.dir, 0o755); err != nil {
		return Report{}, fmt.Errorf("creating directory %s: %w", f.dir, err)
	}

	exists, err := afero.Exists(f.fs, path)
	if err != nil {
		return Report{}, fmt.Errorf("checking %s: %w", path, err)
	}
	if exists {
		return Report{}, errors.NewFileExistsError(opFetch, path, nil)
	}

	start := time.Now()
	body, err := f.get(ctx)
	if err != nil {
		return Report{}, err
	}
	defer body.Close()

	report, err := f.store(path, body)
	if err != nil {
		return Report{}, err
	}
	report.Duration = time.Since(start)

	f.logger.Info().
		Str("url", f.url).
		Str("path", report.Path).
		Str("size", humanize.Bytes(uint64(report.Bytes))). //nolint:gosec // byte counts are non-negative
		Str("xxhash", report.DigestHex()).
		Dur("duration", report.Duration).
		Msg("dataset downloaded")

	return report, nil
}

// get performs the request and returns the body of a 2xx response
func (f *Fetcher) get(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, errors.NewTransferError(opFetch, err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	f.logger.Debug().Str("url", f.url).Msg("requesting dataset")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.NewTransferError(opFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, errors.NewTransferError(opFetch, fmt.Errorf("unexpected status %s", resp.Status))
	}
	return resp.Body, nil
}

// store streams body into a newly created file at path
func (f *Fetcher) store(path string, body io.Reader) (report Report, err error) {
	file, err := f.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if goerrors.Is(err, fs.ErrExist) {
			return Report{}, errors.NewFileExistsError(opFetch, path, err)
		}
		return Report{}, fmt.Errorf("creating %s: %w", path, err)
	}

	digest := xxhash.New()
	n, err := io.Copy(io.MultiWriter(file, digest), body)
	if cerr := file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := f.fs.Remove(path); rerr != nil {
			f.logger.Warn().Err(rerr).Str("path", path).Msg("removing partial download")
		}
		return Report{}, errors.NewTransferError(opFetch, err)
	}

	return Report{Path: path, Bytes: n, Digest: digest.Sum64()}, nil
}
