package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/graft/internal/config"
	"github.com/vango-dev/graft/pkg/component"
	"github.com/vango-dev/graft/pkg/hydrate"
	"github.com/vango-dev/graft/pkg/protocol"
	"github.com/vango-dev/graft/pkg/store"
	"github.com/vango-dev/graft/pkg/telemetry"
	"github.com/vango-dev/graft/pkg/vdom"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func testRegistry(t *testing.T) *component.Registry {
	t.Helper()
	reg := component.NewRegistry()
	require.NoError(t, reg.Register(component.Func("ion-test", func() *vdom.VNode {
		return vdom.H("div", vdom.Slot())
	})))
	reg.Freeze()
	return reg
}

func newTestServer(t *testing.T, st store.Store, opts ...Option) (*Server, *config.Config) {
	t.Helper()
	cfg := config.New()
	opts = append([]Option{WithLogger(quiet)}, opts...)
	return New(cfg, testRegistry(t), st, opts...), cfg
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHydrateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/hydrate", strings.NewReader(`<ion-test>hi</ion-test>`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(HeaderDiagnostics))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `<ion-test data-ssrv="0" class="hydrated"><div data-ssrc="0.0.">hi</div></ion-test>`)
}

func TestHydrateEndpointDiagnostics(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/hydrate", strings.NewReader(`<p>plain</p>`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(HeaderDiagnostics))
	assert.Equal(t, `<p>plain</p>`, rec.Body.String())
}

func TestHydrateEndpointJSON(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/hydrate", strings.NewReader(`<ion-test></ion-test>`))
	req.Header.Set("Accept", "text/html;q=0.5, application/json")

	rec := do(t, srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var res hydrate.Results
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Contains(t, res.HTML, `data-ssrv="0"`)
	assert.Equal(t, []hydrate.ComponentUsage{{Tag: "ion-test", Count: 1, Depth: 1}}, res.Components)
}

func TestHydrateBodyLimit(t *testing.T) {
	srv, cfg := newTestServer(t, nil)
	cfg.Server.MaxBodyBytes = 8

	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/hydrate", strings.NewReader(`<ion-test></ion-test>`)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPublishAndServePages(t *testing.T) {
	st, err := store.NewDiskStore(t.TempDir(), store.WithPrecompress(true), store.WithLogger(quiet))
	require.NoError(t, err)
	srv, _ := newTestServer(t, st)

	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/hydrate?path=/docs", strings.NewReader(`<ion-test>x</ion-test>`)))
	require.Equal(t, http.StatusOK, rec.Code)
	hydrated := rec.Body.String()

	t.Run("identity", func(t *testing.T) {
		rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/pages/docs", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, "Accept-Encoding", rec.Header().Get("Vary"))
		assert.Equal(t, hydrated, rec.Body.String())
	})

	t.Run("brotli", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pages/docs/", nil)
		req.Header.Set("Accept-Encoding", "gzip, br")
		rec := do(t, srv, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
		body, err := io.ReadAll(brotli.NewReader(rec.Body))
		require.NoError(t, err)
		assert.Equal(t, hydrated, string(body))
	})

	t.Run("brotli refused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pages/docs", nil)
		req.Header.Set("Accept-Encoding", "br;q=0")
		rec := do(t, srv, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
	})

	t.Run("missing", func(t *testing.T) {
		rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/pages/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPublishRejectsBadPath(t *testing.T) {
	st, err := store.NewDiskStore(t.TempDir(), store.WithLogger(quiet))
	require.NoError(t, err)
	srv, _ := newTestServer(t, st)

	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/hydrate?path=/../x", strings.NewReader(`<ion-test></ion-test>`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(telemetry.WithRegistry(reg), telemetry.WithNamespace("test"))
	srv, _ := newTestServer(t, nil, WithMetrics(m, reg))

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	do(t, srv, httptest.NewRequest(http.MethodPost, "/hydrate", strings.NewReader(`<ion-test></ion-test>`)))

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `test_http_requests_total{route="/healthz",status="2xx"} 1`)
	assert.Contains(t, body, `test_hydration_passes_total{result="success"} 1`)
	assert.Contains(t, body, `test_render_cycles_total{result="success",tag="ion-test"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	cfg := config.New()
	cfg.Metrics.Enabled = false
	srv := New(cfg, testRegistry(t), nil, WithLogger(quiet))

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)
	f, err := protocol.Decode(data)
	require.NoError(t, err)
	return f
}

func TestLiveChannel(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	hello := readFrame(t, conn)
	assert.Equal(t, protocol.KindHello, hello.Kind)
	_, err = uuid.Parse(hello.Conn)
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`<ion-test>live</ion-test>`)))
	res := readFrame(t, conn)
	assert.Equal(t, protocol.KindResult, res.Kind)
	assert.Equal(t, uint64(1), res.Seq)
	assert.Equal(t, hello.Conn, res.Conn)
	assert.Contains(t, res.HTML, `<div data-ssrc="0.0.">live</div>`)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, 1, res.Stats.Creates)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`<p>none</p>`)))
	res = readFrame(t, conn)
	assert.Equal(t, uint64(2), res.Seq)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0], "E040")

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x01}))
	res = readFrame(t, conn)
	assert.Equal(t, protocol.KindError, res.Kind)
	assert.Equal(t, uint64(3), res.Seq)

	assert.Eventually(t, func() bool { return srv.Live() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return srv.Live() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.New()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	srv := New(cfg, testRegistry(t), nil, WithLogger(quiet))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAcceptsEncoding(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"gzip", false},
		{"br", true},
		{"gzip, deflate, br", true},
		{"BR;q=0.8", true},
		{"br;q=0", false},
		{"br; q=0", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Encoding", tt.header)
			assert.Equal(t, tt.want, acceptsEncoding(req, "br"))
		})
	}
}
