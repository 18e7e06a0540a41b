package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout bounds a whole request/response cycle.
	DefaultTimeout = 30 * time.Second

	defaultUserAgent = "gosim-client/1.0"
	contentTypeJSON  = "application/json"
	contentTypeOctet = "application/octet-stream"
)

// Client issues requests against one backend base URL. It holds no mutable
// state and is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
	observer   Observer
	userAgent  string
}

type settings struct {
	httpClient *http.Client
	timeout    time.Duration
	token      string
	logger     *zap.Logger
	observers  []Observer
	userAgent  string
}

// Option configures a Client.
type Option func(*settings)

// WithHTTPClient sets the underlying HTTP client. It is copied, never mutated.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.httpClient = hc }
}

// WithTimeout overrides DefaultTimeout. Zero disables the client timeout and
// leaves deadlines to the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithBearerToken sends "Authorization: Bearer <token>" on every request.
// The token is static; it is never refreshed.
func WithBearerToken(token string) Option {
	return func(s *settings) { s.token = token }
}

// WithLogger sets the logger used for call logging.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithObserver adds an observer called after every request.
func WithObserver(o Observer) Option {
	return func(s *settings) { s.observers = append(s.observers, o) }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// New creates a client for baseURL, e.g. "http://localhost:8000/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	s := settings{
		timeout:   DefaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(&s)
	}

	var hc http.Client
	if s.httpClient != nil {
		hc = *s.httpClient
	}
	hc.Timeout = s.timeout
	if s.token != "" {
		hc.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}),
			Base:   hc.Transport,
		}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	return &Client{
		baseURL:    u,
		httpClient: &hc,
		logger:     s.logger,
		observer:   append(observers{NewLogObserver(s.logger)}, s.observers...),
		userAgent:  s.userAgent,
	}, nil
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Logger returns the client's logger.
func (c *Client) Logger() *zap.Logger { return c.logger }

// URL joins segments onto the base URL, escaping each one. Empty segments
// are kept, so URL("projects", "p1", "assets", "") ends in "/assets/".
// It performs no I/O.
func (c *Client) URL(segments ...string) string {
	u := *c.baseURL
	u.Path, u.RawPath = joinPath(c.baseURL, segments)
	return u.String()
}

func joinPath(base *url.URL, segments []string) (path, rawPath string) {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	raw := base.EscapedPath() + "/" + strings.Join(escaped, "/")
	p, err := url.PathUnescape(raw)
	if err != nil {
		return raw, ""
	}
	if p == raw {
		return p, ""
	}
	return p, raw
}

// File is an upload part.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Request describes one backend call.
type Request struct {
	// Op names the operation in logs and metrics, e.g. "projects.get".
	Op     string
	Method string
	Path   []string
	Query  url.Values
	// Body is JSON-encoded when non-nil.
	Body any
	// File is sent as the single part of a multipart form under FileField.
	File      *File
	FileField string
	// OptionalData accepts a 2xx body that is not a {"data": ...} object,
	// e.g. a bare status message; out is then left untouched.
	OptionalData bool
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Do performs req and decodes the "data" member of the JSON response into
// out. A nil out discards the body.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	return c.execute(ctx, req, contentTypeJSON, func(body []byte) error {
		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if req.OptionalData && !hasData(body) {
			return nil
		}
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return err
		}
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		return json.Unmarshal(env.Data, out)
	})
}

// hasData reports whether body is a JSON object with a "data" member.
func hasData(body []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return false
	}
	_, ok := obj["data"]
	return ok
}

// DoBinary performs req asking for the raw representation and returns the
// body bytes untouched.
func (c *Client) DoBinary(ctx context.Context, req Request) ([]byte, error) {
	var data []byte
	err := c.execute(ctx, req, contentTypeOctet, func(body []byte) error {
		data = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) execute(ctx context.Context, r Request, accept string, decode func([]byte) error) (err error) {
	start := time.Now()
	target := c.URL(r.Path...)
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}
	call := Call{
		Op:        r.Op,
		Method:    r.Method,
		Path:      "/" + strings.Join(r.Path, "/"),
		RequestID: requestID(ctx),
		File:      r.File != nil || accept == contentTypeOctet,
	}
	defer func() {
		call.Duration = time.Since(start)
		call.Err = err
		c.observer.Observe(ctx, call)
	}()

	httpReq, err := c.newRequest(ctx, r, target, accept, call.RequestID)
	if err != nil {
		return &TransportError{Op: r.Op, Method: r.Method, URL: target, Err: err}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Op: r.Op, Method: r.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()
	call.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: r.Op, Method: r.Method, URL: target, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(r.Op, r.Method, target, resp.StatusCode, body)
	}

	if decode != nil {
		if derr := decode(body); derr != nil {
			return &DecodeError{Op: r.Op, Err: derr}
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r Request, target, accept, rid string) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.File != nil:
		buf, ct, err := multipartBody(r.FileField, r.File)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case r.Body != nil:
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body, contentType = bytes.NewReader(data), contentTypeJSON
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, rid)
	return req, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func multipartBody(field string, f *File) (*bytes.Buffer, string, error) {
	if f.Content == nil {
		return nil, "", fmt.Errorf("file %q has no content", f.Name)
	}
	ct := f.ContentType
	if ct == "" {
		ct = mime.TypeByExtension(filepath.Ext(f.Name))
	}
	if ct == "" {
		ct = contentTypeOctet
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return nil, "", fmt.Errorf("copy file content: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
