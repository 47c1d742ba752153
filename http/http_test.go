package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"counsellor-matching/http/handlers"
	"counsellor-matching/services/classifier"
	"counsellor-matching/services/ranking"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, ranking.NewMetrics().Register(reg))

	mux := nethttp.NewServeMux()
	SetupRoutes(mux, &handlers.Handler{Classifier: classifier.NewKeywordClassifier(nil)}, reg, nil)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := nethttp.Post(srv.URL+"/api/classify", "application/json", strings.NewReader(`{"text":"cannot sleep, insomnia"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, nethttp.StatusOK, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	req, err := nethttp.NewRequest(nethttp.MethodOptions, srv.URL+"/bookings", nil)
	require.NoError(t, err)
	res, err = nethttp.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, nethttp.StatusNoContent, res.StatusCode)

	res, err = nethttp.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, nethttp.StatusOK, res.StatusCode)

	res, err = nethttp.Get(srv.URL + "/no-such-route")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, nethttp.StatusNotFound, res.StatusCode)
}
