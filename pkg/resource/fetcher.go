// Package resource loads scene files and stylesheets from disk or over
// HTTP.
package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// DefaultFetcher reads local paths and fetches http(s) URLs, resolving
// relative URIs against a base directory or URL.
type DefaultFetcher struct {
	base string
}

// NewFetcher creates a DefaultFetcher with the given base.
// Relative URIs passed to Fetch will be resolved against this base.
func NewFetcher(base string) *DefaultFetcher {
	return &DefaultFetcher{base: base}
}

// Base returns the directory or URL relative URIs resolve against.
func (f *DefaultFetcher) Base() string {
	return f.base
}

// Resolve returns uri made absolute against the fetcher's base.
func (f *DefaultFetcher) Resolve(uri string) string {
	switch {
	case IsNetworkURL(uri) || f.base == "":
		return uri
	case IsNetworkURL(f.base):
		return ResolveURL(f.base, uri)
	case filepath.IsAbs(uri):
		return uri
	}
	return filepath.Join(f.base, uri)
}

// Fetch retrieves the resource at the given URI.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	resolved := f.Resolve(uri)
	if IsNetworkURL(resolved) {
		return fetchHTTP(ctx, resolved)
	}
	body, err := os.ReadFile(resolved)
	if err != nil {
		return nil, "", err
	}
	return body, contentTypeFor(resolved), nil
}

// FetchCSS fetches a stylesheet URI and returns its text content.
// Returns an error if the content type does not look like CSS or text.
func (f *DefaultFetcher) FetchCSS(ctx context.Context, uri string) (string, error) {
	body, contentType, err := f.Fetch(ctx, uri)
	if err != nil {
		return "", err
	}
	// Accept text/css, text/plain, or any text/* content type
	ct := strings.ToLower(contentType)
	if ct != "" && !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "css") {
		return "", fmt.Errorf("unexpected content type for CSS: %s", contentType)
	}
	return string(body), nil
}

// Dir returns the base that resources referenced from uri resolve
// against: its directory, or for a URL the URL itself.
func Dir(uri string) string {
	if IsNetworkURL(uri) {
		return uri
	}
	return filepath.Dir(uri)
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return "text/css"
	case ".yaml", ".yml":
		return "application/yaml"
	}
	return ""
}
