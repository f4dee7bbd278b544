package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupServer_Endpoints(t *testing.T) {
	s := SetupServer("")
	assert.Equal(t, ":6060", s.Addr)

	s.RegisterAuthHealthHandler(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	Responses.WithLabelValues("template").Inc()
	SuccessfulLLMGen.Add(1)

	ts := httptest.NewServer(s.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(ts.URL + "/healthz/auth")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	out := string(body)
	assert.True(t, strings.Contains(out, `streambuddy_responses_total{source="template"}`))
	assert.Contains(t, out, "successful_llm_gen_count 1")
}
