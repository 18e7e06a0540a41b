package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	calls []Call
}

func (r *recorder) Observe(_ context.Context, call Call) { r.calls = append(r.calls, call) }

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/v1/", opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	for _, raw := range []string{"", "/v1", "localhost:8000", "::bad"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}

func TestURL(t *testing.T) {
	c, err := New("http://example.test/v1/")
	require.NoError(t, err)

	assert.Equal(t, "http://example.test/v1", c.BaseURL())
	assert.Equal(t, "http://example.test/v1/projects/p1", c.URL("projects", "p1"))
	assert.Equal(t, "http://example.test/v1/projects/p1/assets/", c.URL("projects", "p1", "assets", ""))
	assert.Equal(t, "http://example.test/v1/projects/a%2Fb/assets/x%20y", c.URL("projects", "a/b", "assets", "x y"))
}

func TestDo_DecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/p1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"name":"demo"}}`))
	})

	var out struct{ Name string }
	require.NoError(t, c.Do(context.Background(), Request{Op: "t", Method: http.MethodGet, Path: []string{"projects", "p1"}}, &out))
	assert.Equal(t, "demo", out.Name)
}

func TestDo_NullDataAndEmptyBody(t *testing.T) {
	bodies := []string{`{"data":null}`, ``, `{}`}
	for _, body := range bodies {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		var out struct{ Name string }
		assert.NoError(t, c.Do(context.Background(), Request{Op: "t", Method: http.MethodDelete}, &out), body)
	}
}

func TestDo_SendsJSONBodyAndQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"x"}`, string(b))
		_, _ = w.Write([]byte(`{"data":null}`))
	})
	err := c.Do(context.Background(), Request{
		Op:     "t",
		Method: http.MethodPost,
		Path:   []string{"projects"},
		Query:  url.Values{"page": {"2"}},
		Body:   map[string]string{"name": "x"},
	}, nil)
	require.NoError(t, err)
}

func TestDo_StatusError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		notFound   bool
		wantMsg    string
	}{
		{"fastapi detail", http.StatusNotFound, `{"detail":"Project not found"}`, "Project not found", true, "Project not found"},
		{"validation detail", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","name"]}]}`, `[{"loc":["body","name"]}]`, false, "loc"},
		{"plain body", http.StatusInternalServerError, "boom", "", false, "boom"},
		{"empty body", http.StatusBadGateway, "", "", false, "Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := c.Do(context.Background(), Request{Op: "projects.get", Method: http.MethodGet}, nil)

			var se *HTTPStatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.wantDetail, se.Detail)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrNotFound))
			assert.Equal(t, tt.notFound, IsNotFound(err))
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.True(t, strings.HasPrefix(err.Error(), "projects.get: "))
		})
	}
}

func TestDo_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":"not an object"}`))
	})
	var out struct{ Name string }
	err := c.Do(context.Background(), Request{Op: "t", Method: http.MethodGet}, &out)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "t", de.Op)
	assert.Zero(t, StatusCode(err))
}

func TestDo_OptionalData(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantName  string
		strictErr bool
	}{
		{"bare string", `"Successfully uploaded the files"`, "", true},
		{"object without data", `{"message":"ok"}`, "", false},
		{"array", `[1,2]`, "", true},
		{"envelope", `{"data":{"name":"demo"}}`, "demo", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			var out struct{ Name string }
			err := c.Do(context.Background(), Request{Op: "t", Method: http.MethodPost, OptionalData: true}, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, out.Name)

			err = c.Do(context.Background(), Request{Op: "t", Method: http.MethodPost}, &out)
			if tt.strictErr {
				var de *DecodeError
				assert.ErrorAs(t, err, &de)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(base)
	require.NoError(t, err)
	err = c.Do(context.Background(), Request{Op: "t", Method: http.MethodGet}, nil)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.MethodGet, te.Method)
	assert.False(t, IsNotFound(err))
}

func TestDo_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Do(ctx, Request{Op: "t", Method: http.MethodGet}, nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestObserver_SeesReturnedError(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, WithObserver(rec))

	err := c.Do(context.Background(), Request{Op: "projects.delete", Method: http.MethodDelete, Path: []string{"projects", "x"}}, nil)
	require.Error(t, err)
	require.Len(t, rec.calls, 1)

	call := rec.calls[0]
	assert.Same(t, err.(*HTTPStatusError), call.Err.(*HTTPStatusError))
	assert.Equal(t, "projects.delete", call.Op)
	assert.Equal(t, "/projects/x", call.Path)
	assert.Equal(t, http.StatusNotFound, call.StatusCode)
	assert.False(t, call.File)
}

func TestObserver_CalledOnSuccess(t *testing.T) {
	rec := &recorder{}
	var order []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	}, WithObserver(rec), WithObserver(ObserverFunc(func(context.Context, Call) { order = append(order, "second") })))

	require.NoError(t, c.Do(context.Background(), Request{Op: "t", Method: http.MethodGet}, nil))
	require.Len(t, rec.calls, 1)
	assert.NoError(t, rec.calls[0].Err)
	assert.Equal(t, []string{"second"}, order)
}

func TestLogObserver_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("bytes"))
	}, WithLogger(zap.New(core)))
	ctx := context.Background()

	_, err := c.DoBinary(ctx, Request{Op: "assets.download", Method: http.MethodGet})
	require.NoError(t, err)
	_ = c.Do(ctx, Request{Op: "projects.get", Method: http.MethodGet, Query: url.Values{"fail": {"1"}}}, nil)
	_, _ = c.DoBinary(ctx, Request{Op: "assets.download", Method: http.MethodGet, Query: url.Values{"fail": {"1"}}})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "api call", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "api call failed", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "api file call failed", entries[2].Message)
	assert.Equal(t, "assets.download", entries[2].ContextMap()["op"])
}

func TestDoBinary_ReturnsRawBytes(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xfe, 0xff, '{', '}'}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/octet-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(payload)
	})
	got, err := c.DoBinary(context.Background(), Request{Op: "t", Method: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":null}`))
	}, WithBearerToken("s3cret"))
	require.NoError(t, c.Do(context.Background(), Request{Op: "t", Method: http.MethodGet}, nil))

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
	})
	require.NoError(t, c.Do(context.Background(), Request{Op: "t", Method: http.MethodGet}, nil))
}

func TestRequestID(t *testing.T) {
	var seen []string
	rec := &recorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(HeaderRequestID))
	}, WithObserver(rec))

	ctx := WithRequestID(context.Background(), "rid-1")
	assert.Equal(t, "rid-1", RequestIDFrom(ctx))
	require.NoError(t, c.Do(ctx, Request{Op: "t", Method: http.MethodGet}, nil))
	require.NoError(t, c.Do(context.Background(), Request{Op: "t", Method: http.MethodGet}, nil))

	require.Len(t, seen, 2)
	assert.Equal(t, "rid-1", seen[0])
	assert.NotEmpty(t, seen[1])
	assert.NotEqual(t, "rid-1", seen[1])
	assert.Equal(t, seen[1], rec.calls[1].RequestID)
}

func TestMultipartUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		files := r.MultipartForm.File["files"]
		if !assert.Len(t, files, 1) {
			return
		}
		assert.Equal(t, `a "quoted".pdf`, files[0].Filename)
		assert.Equal(t, "application/pdf", files[0].Header.Get("Content-Type"))

		f, err := files[0].Open()
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "%PDF", string(b))
		_, _ = w.Write([]byte(`{"data":null}`))
	})
	err := c.Do(context.Background(), Request{
		Op:        "assets.upload",
		Method:    http.MethodPost,
		File:      &File{Name: `a "quoted".pdf`, Content: strings.NewReader("%PDF")},
		FileField: "files",
	}, nil)
	require.NoError(t, err)
}

func TestMultipartUpload_NilContent(t *testing.T) {
	c, err := New("http://example.test")
	require.NoError(t, err)
	err = c.Do(context.Background(), Request{Op: "assets.upload", Method: http.MethodPost, File: &File{Name: "a.pdf"}, FileField: "files"}, nil)
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
		}
	}, WithObserver(m))
	ctx := context.Background()

	_ = c.Do(ctx, Request{Op: "projects.get", Method: http.MethodGet, Path: []string{"ok"}}, nil)
	_ = c.Do(ctx, Request{Op: "projects.get", Method: http.MethodGet, Path: []string{"missing"}}, nil)
	m.Observe(ctx, Call{Op: "projects.get", Err: errors.New("dial")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("projects.get", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("projects.get", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("projects.get", "transport_error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestWithHTTPClient_NotMutated(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}
	c, err := New("http://example.test", WithHTTPClient(hc), WithTimeout(time.Second), WithBearerToken("x"))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, hc.Timeout)
	assert.Nil(t, hc.Transport)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}
