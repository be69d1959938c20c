package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/transport"
)

func TestObserver_ObserveExchange(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg)
	require.NoError(t, err)

	obs.ObserveExchange(transport.Exchange{Transport: "rest", Operation: "GET", StatusCode: 200, Duration: 20 * time.Millisecond})
	obs.ObserveExchange(transport.Exchange{Transport: "rest", Operation: "GET", StatusCode: 200, Duration: 10 * time.Millisecond})
	obs.ObserveExchange(transport.Exchange{
		Transport:  "rest",
		Operation:  "GET",
		StatusCode: 403,
		Err:        apierror.AuthorizationRequired(403, "", ""),
	})
	obs.ObserveExchange(transport.Exchange{
		Transport: "xmlrpc",
		Operation: "wp.getOptions",
		Err:       apierror.ServerFault(403, "Incorrect username or password."),
	})

	assert.Equal(t, float64(2), testutil.ToFloat64(obs.requests.WithLabelValues("rest", "GET", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(obs.requests.WithLabelValues("rest", "GET", "authorization_required")))
	assert.Equal(t, float64(1), testutil.ToFloat64(obs.requests.WithLabelValues("xmlrpc", "wp.getOptions", "server_fault")))
	assert.Equal(t, 2, testutil.CollectAndCount(obs.duration))
}

func TestNewObserver_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewObserver(reg)
	require.NoError(t, err)

	_, err = NewObserver(reg)
	assert.Error(t, err)
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "http_error", Result(apierror.HTTPError(500, "", "")))
	assert.Equal(t, "decoding_failure", Result(apierror.DecodingFailuref("bad")))
	assert.Equal(t, "transport_error", Result(context.Canceled))
	assert.Equal(t, "transport_error", Result(errors.New("connection reset")))
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg)
	require.NoError(t, err)

	obs.ObserveExchange(transport.Exchange{Transport: "rest", Operation: "POST", Duration: time.Second})

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))

	out := buf.String()
	assert.Contains(t, out, `sitekit_client_requests_total{operation="POST",result="ok",transport="rest"} 1`)
	assert.Contains(t, out, `sitekit_client_request_duration_seconds{operation="POST",transport="rest"} count=1 sum=1`)
}
