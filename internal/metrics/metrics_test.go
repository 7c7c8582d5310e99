package metrics

import (
	"context"
	"io/ioutil"
	"net"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe(t *testing.T) {
	promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctionhouse_test_total",
		Help: "test counter",
	}).Inc()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(0)
	done := make(chan error, 1)
	go func() { done <- s.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, _ := ioutil.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "auctionhouse_test_total 1")

	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, <-done)
}
