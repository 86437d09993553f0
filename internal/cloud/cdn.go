package cloud

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// CDN resolves keys against a public base URL. It cannot upload.
type CDN struct {
	base *url.URL
}

func NewCDN(baseURL string) (*CDN, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid CDN base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid CDN base URL %q: need http(s) scheme and host", baseURL)
	}
	return &CDN{base: u}, nil
}

func (c *CDN) Name() string { return "cdn" }

func (c *CDN) Resolve(_ context.Context, key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return c.base.JoinPath(strings.Split(k, "/")...).String(), nil
}

func (c *CDN) Upload(context.Context, string, io.Reader, string) error {
	return fmt.Errorf("cdn storage is read-only: %w", ErrNoStorage)
}
