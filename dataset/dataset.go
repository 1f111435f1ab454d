// Package dataset loads the Getaround rental pricing dataset from a URL or a local
// file and parses it into car listings.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amirphl/getaround-pricing/models"
)

// ErrSourceTooLarge is returned when a source exceeds the configured size limit
var ErrSourceTooLarge = errors.New("dataset source exceeds size limit")

// Loader fetches and parses dataset sources.
type Loader struct {
	HTTPClient *http.Client
	MaxBytes   int64
	// Sheet is read from .xlsx sources; the first sheet is used when empty
	Sheet string
}

func NewLoader(timeout time.Duration, maxBytes int64) *Loader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Loader{
		HTTPClient: &http.Client{Timeout: timeout},
		MaxBytes:   maxBytes,
	}
}

// Load reads the source and returns its listings in file order.
func (l *Loader) Load(ctx context.Context, source string) ([]*models.CarListing, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if l.MaxBytes > 0 {
		r = &limitedReader{r: rc, remaining: l.MaxBytes}
	}

	if isXLSX(source) {
		return ParseXLSX(r, l.Sheet)
	}
	return ParseCSV(r)
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, fmt.Errorf("dataset source is empty")
	}

	u, err := url.Parse(source)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build dataset request: %w", err)
		}
		resp, err := l.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch dataset: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch dataset: unexpected status %d", resp.StatusCode)
		}
		return resp.Body, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	return f, nil
}

func isXLSX(source string) bool {
	p := source
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.EqualFold(filepath.Ext(p), ".xlsx")
}

type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		// one probe byte tells a source that ends exactly at the limit from an oversized one
		var probe [1]byte
		n, err := l.r.Read(probe[:])
		if n > 0 {
			return 0, ErrSourceTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}
