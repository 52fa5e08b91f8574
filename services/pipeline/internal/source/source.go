// Package source opens the raw IRVE export from disk or over HTTP.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
	"github.com/02loveslollipop/irve-dashboard/internal/table"
)

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Open returns a reader over the raw export at location.
func Open(ctx context.Context, client *http.Client, location string) (io.ReadCloser, error) {
	if !IsRemote(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request raw export: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// Fetch reads the raw table at location.
func Fetch(ctx context.Context, client *http.Client, location string) (*irve.RawTable, error) {
	rc, err := Open(ctx, client, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := table.ReadRaw(rc)
	if err != nil {
		return nil, fmt.Errorf("decode raw export: %w", err)
	}
	return raw, nil
}
