// internal/catalog/loader.go
//
// One-time dataset fetch at startup, modelled as a single suspend point that
// resolves to a loaded Catalog or a load failure.
//
// Source selection (NewSource):
//   1. CATALOG_URL set  → HTTP GET, retried with exponential backoff.
//   2. CATALOG_FILE set → read from disk.
//   3. neither          → embedded assets/catalog.json.
//
// States: not_loaded → loaded | failed. A failed loader can be retried with
// Load; callers must render "not loaded" and "failed" as distinct states.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"github.com/jgalan247/Edexcel-GCSE/assets"
)

// State is the lifecycle state of a Loader.
type State string

const (
	StateNotLoaded State = "not_loaded"
	StateLoaded    State = "loaded"
	StateFailed    State = "failed"
)

var (
	// ErrNotLoaded is returned while the initial fetch has not resolved.
	ErrNotLoaded = errors.New("catalog not loaded")
	// ErrDatasetLoad wraps every fetch/parse failure.
	ErrDatasetLoad = errors.New("dataset load failure")
)

const maxDocumentSize = 4 << 20

// Source fetches the raw dataset document.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// NewSource picks a source from configuration; see the file header.
func NewSource(url, path string) Source {
	switch {
	case url != "":
		return &URLSource{URL: url}
	case path != "":
		return FileSource{Path: path}
	default:
		return EmbeddedSource{}
	}
}

// EmbeddedSource reads assets/catalog.json.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Fetch(context.Context) ([]byte, error) {
	return assets.CatalogDocument()
}

// FileSource reads a document from disk.
type FileSource struct{ Path string }

func (f FileSource) Name() string { return "file:" + f.Path }

func (f FileSource) Fetch(context.Context) ([]byte, error) {
	return os.ReadFile(f.Path)
}

// URLSource fetches a document over HTTP. Network errors and 5xx responses
// are retried; other statuses fail immediately.
type URLSource struct {
	URL     string
	Client  *http.Client
	Retries uint64        // default 3
	Base    time.Duration // default 200ms
}

func (u *URLSource) Name() string { return "url:" + u.URL }

func (u *URLSource) Fetch(ctx context.Context) ([]byte, error) {
	client := u.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	retries, base := u.Retries, u.Base
	if retries == 0 {
		retries = 3
	}
	if base <= 0 {
		base = 200 * time.Millisecond
	}

	var body []byte
	b := retry.WithMaxRetries(retries, retry.NewExponential(base))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			log.Warn().Err(err).Str("url", u.URL).Msg("catalog fetch failed, retrying")
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("catalog fetch: status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("catalog fetch: status %d", resp.StatusCode)
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
		return err
	})
	return body, err
}

// Loader owns the Catalog and its load state.
type Loader struct {
	src Source

	mu    sync.RWMutex
	state State
	cat   *Catalog
	err   error
}

// NewLoader returns a loader in the not_loaded state.
func NewLoader(src Source) *Loader {
	return &Loader{src: src, state: StateNotLoaded}
}

// Load fetches and parses the document. On failure the previous catalog, if
// any, is dropped and the loader enters the failed state.
func (l *Loader) Load(ctx context.Context) error {
	data, err := l.src.Fetch(ctx)
	var cat *Catalog
	if err == nil {
		cat, err = Parse(data)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.state, l.cat = StateFailed, nil
		l.err = fmt.Errorf("%w: %s: %w", ErrDatasetLoad, l.src.Name(), err)
		log.Error().Err(err).Str("source", l.src.Name()).Msg("catalog load failed")
		return l.err
	}
	l.state, l.cat, l.err = StateLoaded, cat, nil
	log.Info().Str("source", l.src.Name()).Interface("datasets", cat.Stats()).Msg("catalog loaded")
	return nil
}

// State reports the current state and, when failed, the failure.
func (l *Loader) State() (State, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state, l.err
}

// Catalog returns the loaded catalog, ErrNotLoaded, or the load failure.
func (l *Loader) Catalog() (*Catalog, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch l.state {
	case StateLoaded:
		return l.cat, nil
	case StateFailed:
		return nil, l.err
	default:
		return nil, ErrNotLoaded
	}
}

// Get is a convenience for Catalog().Get.
func (l *Loader) Get(mode Mode, topicID string) (*Dataset, error) {
	c, err := l.Catalog()
	if err != nil {
		return nil, err
	}
	return c.Get(mode, topicID)
}
