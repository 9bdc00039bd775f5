package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/engine"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *testutil.FakeNode) {
	t.Helper()
	dialer := testutil.NewFakeDialer()
	node := dialer.Add(chain.Mainnet.FallbackURL(), testutil.NewFakeNode())
	node.Checkpoints[100] = testutil.Checkpoint(100)

	eng := engine.New(dialer, engine.WithLogger(quiet))
	opts.Logger = quiet
	srv := httptest.NewServer(NewHandler(eng, opts))
	t.Cleanup(srv.Close)
	return srv, node
}

func postQuery(t *testing.T, srv *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/query", "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestQuery_ReturnsOutcomes(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, body := postQuery(t, srv, "SELECT number, epoch FROM checkpoint 100 ON mainnet; SELECT number FROM checkpoint 7 ON mainnet")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, body["run_id"])

	outcomes, ok := body["outcomes"].([]any)
	require.True(t, ok)
	require.Len(t, outcomes, 2)

	first := outcomes[0].(map[string]any)
	assert.Nil(t, first["error"])
	rows := first["result"].(map[string]any)["checkpoint"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{"number": float64(100), "epoch": float64(1)}, rows[0])

	second := outcomes[1].(map[string]any)
	assert.Nil(t, second["result"])
	assert.Equal(t, "NOT_FOUND", second["error"].(map[string]any)["code"])
}

func TestQuery_ParseErrorIsBadRequest(t *testing.T) {
	srv, node := newTestServer(t, Options{})

	resp, body := postQuery(t, srv, "SELECT * FROM planets ON mainnet")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ENTITY", body["code"])
	assert.Zero(t, node.TotalCalls())
}

func TestQuery_DumpOutsideDirRejected(t *testing.T) {
	srv, node := newTestServer(t, Options{})

	resp, body := postQuery(t, srv, `SELECT * FROM checkpoint 100 ON mainnet >> "../escaped.json"`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_DUMP", body["code"])
	assert.Zero(t, node.TotalCalls())
}

func TestQuery_EmptyBody(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, body := postQuery(t, srv, "   \n")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "EMPTY_PROGRAM", body["code"])
}

func TestQuery_BodyTooLarge(t *testing.T) {
	srv, _ := newTestServer(t, Options{MaxBodyBytes: 16})

	resp, body := postQuery(t, srv, "SELECT * FROM checkpoint 100 ON mainnet")

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "BODY_TOO_LARGE", body["code"])
}

func TestQuery_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/v1/query")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestFields(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/v1/fields")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var all map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	assert.Len(t, all, len(ir.AllEntityKinds()))
	assert.Equal(t, ir.FieldNames(ir.KindCoin), all["coin"])
}

func TestEntityFields(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/v1/fields/tx")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var names []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&names))
	assert.Equal(t, ir.FieldNames(ir.KindTransaction), names)

	missing, err := http.Get(srv.URL + "/v1/fields/planet")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimit: 1, Burst: 1})

	for range 3 {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, "healthz is not rate limited")
	}
}

func TestQuery_RateLimited(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimit: 0.001, Burst: 1})

	resp, _ := postQuery(t, srv, "SELECT number FROM checkpoint 100 ON mainnet")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postQuery(t, srv, "SELECT number FROM checkpoint 100 ON mainnet")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", body["code"])
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}
