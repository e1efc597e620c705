package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveCall(t *testing.T) {
	r := NewRecorder()

	r.ObserveCall("list_objects", "", 20*time.Millisecond)
	r.ObserveCall("execute_soql_query", "InvalidRequestError", time.Second)
	r.ObserveCall("execute_soql_query", "", 300*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues("list_objects", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues("execute_soql_query", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("execute_soql_query", "InvalidRequestError")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() { r.ObserveCall("list_objects", "", time.Millisecond) })
}

func TestServer_ServesMetrics(t *testing.T) {
	r := NewRecorder()
	r.ObserveCall("describe_object", "", time.Millisecond)

	srv, err := Listen("127.0.0.1:0", r)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		assert.NoError(t, <-done)
	})

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `sfmcp_tool_calls_total{outcome="success",tool="describe_object"} 1`))
}

func TestRecorder_Registry(t *testing.T) {
	r := NewRecorder()
	r.ObserveCall("list_objects", "", time.Millisecond)
	r.ObserveCall("describe_object", "AuthenticationError", time.Millisecond)

	n, err := testutil.GatherAndCount(r.Registry(), "sfmcp_tool_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(r.Registry(), "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
