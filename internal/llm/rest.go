package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/celestial/internal/util"
)

// maxReplyBytes caps a provider reply; a horoscope object is a few KB
const maxReplyBytes = 4 << 20

// restClient talks JSON to the providers that have no Go SDK in our stack
type restClient struct {
	baseURL string
	header  http.Header
	http    *http.Client
}

func newRESTClient(cfg Config, defaultURL string, defaultTimeout time.Duration, header http.Header) *restClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if header == nil {
		header = http.Header{}
	}

	return &restClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		header:  header,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
	}
}

// apiError turns a non-200 body into the provider's error message, or ""
type apiError func(body []byte) string

// post sends in as JSON to path and decodes a 200 reply into out
func (c *restClient) post(ctx context.Context, path string, in, out interface{}, describe apiError) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		if msg := describe(body); msg != "" {
			return fmt.Errorf("status %d: %s", status, msg)
		}
		return fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// reachable reports whether a GET of path answers 200
func (c *restClient) reachable(ctx context.Context, path string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false
	}
	_, status, err := c.do(req)
	return err == nil && status == http.StatusOK
}

func (c *restClient) do(req *http.Request) ([]byte, int, error) {
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read reply: %w", err)
	}
	return body, resp.StatusCode, nil
}
