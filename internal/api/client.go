// Package api talks to the NoteBoard drawing store over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NoteBoard/internal/state"
	"NoteBoard/internal/surface"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 5.0

	maxImageBytes = 32 << 20
	maxErrorBody  = 512
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options tune a Client. Zero values select the defaults.
type Options struct {
	// Timeout bounds each request, including with an injected HTTPClient.
	Timeout    time.Duration
	RateLimit  float64 // requests per second
	HTTPClient HTTPDoer
}

// Client is the drawing half of the NoteBoard backend API.
type Client struct {
	base    string
	http    HTTPDoer
	timeout time.Duration
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts Options, log logrus.FieldLogger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		base:    strings.TrimRight(u.String(), "/"),
		http:    opts.HTTPClient,
		timeout: opts.Timeout,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		log:     log.WithField("component", "api"),
	}, nil
}

// BaseURL returns the backend root the client was created with.
func (c *Client) BaseURL() string { return c.base }

type drawingPayload struct {
	DataURL string `json:"dataURL"`
}

type savedDrawing struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	FilePath string `json:"filePath"`
}

// List returns the stored drawings in backend order.
func (c *Client) List(ctx context.Context) ([]state.ImageRef, error) {
	body, err := c.do(ctx, "list drawings", http.MethodGet, "/drawings", nil)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &state.NetworkError{Op: "list drawings", Err: fmt.Errorf("unexpected listing: %w", err)}
	}
	images := make([]state.ImageRef, 0, len(items))
	for i, item := range items {
		p, err := listedPath(item)
		if err != nil {
			return nil, &state.NetworkError{Op: "list drawings", Err: fmt.Errorf("listing entry %d: %w", i, err)}
		}
		images = append(images, state.NewImageRef(p))
	}
	return images, nil
}

// Create stores a new drawing.
func (c *Client) Create(ctx context.Context, png []byte) (state.ImageRef, error) {
	body, err := c.sendDrawing(ctx, "save drawing", http.MethodPost, "/save-drawing", png)
	if err != nil {
		return state.ImageRef{}, err
	}
	return parseSaved(body, ""), nil
}

// Update replaces the stored drawing with the given filename.
func (c *Client) Update(ctx context.Context, filename string, png []byte) (state.ImageRef, error) {
	body, err := c.sendDrawing(ctx, "update drawing", http.MethodPut, "/edit-drawing/"+url.PathEscape(filename), png)
	if err != nil {
		return state.ImageRef{}, err
	}
	return parseSaved(body, filename), nil
}

// Delete removes the stored drawing with the given filename.
func (c *Client) Delete(ctx context.Context, filename string) error {
	_, err := c.do(ctx, "delete drawing", http.MethodDelete, "/drawings/"+url.PathEscape(filename), nil)
	return err
}

// Fetch downloads the raster bytes of a stored drawing.
func (c *Client) Fetch(ctx context.Context, ref state.ImageRef) ([]byte, error) {
	return c.do(ctx, "fetch drawing", http.MethodGet, ref.Path, nil)
}

func (c *Client) sendDrawing(ctx context.Context, op, method, path string, png []byte) ([]byte, error) {
	payload, err := json.Marshal(drawingPayload{DataURL: surface.EncodeDataURL(png)})
	if err != nil {
		return nil, fmt.Errorf("%s: marshal payload: %w", op, err)
	}
	return c.do(ctx, op, method, path, payload)
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &state.NetworkError{Op: op, Err: err}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+strings.TrimLeft(path, "/"), reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).Warnf("%s %s failed", method, path)
		return nil, &state.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, &state.NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	c.log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"bytes":   len(body),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debugf("%s %s", method, path)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &state.NetworkError{Op: op, Status: resp.StatusCode, Err: errors.New(snippet(body))}
	}
	if len(body) > maxImageBytes {
		return nil, &state.NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("response exceeds %d bytes", maxImageBytes)}
	}
	return body, nil
}

// listedPath reads one listing entry: a bare path, or an object carrying
// path or filePath as some deployments return.
func listedPath(item json.RawMessage) (string, error) {
	var p string
	if err := json.Unmarshal(item, &p); err == nil {
		return p, nil
	}
	var ref savedDrawing
	if err := json.Unmarshal(item, &ref); err != nil {
		return "", err
	}
	if ref.path() == "" {
		return "", errors.New("entry has no path")
	}
	return ref.path(), nil
}

func (s savedDrawing) path() string {
	if s.Path != "" {
		return s.Path
	}
	return s.FilePath
}

// parseSaved reads the save/update response leniently; fallback names the
// file when the backend answers without a body.
func parseSaved(body []byte, fallback string) state.ImageRef {
	var saved savedDrawing
	if len(bytes.TrimSpace(body)) > 0 {
		_ = json.Unmarshal(body, &saved)
	}
	ref := state.NewImageRef(saved.path())
	if saved.Filename != "" {
		ref.Filename = saved.Filename
	}
	if ref.Filename == "" {
		ref.Filename = fallback
	}
	return ref
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	if s == "" {
		return "empty response"
	}
	return s
}
