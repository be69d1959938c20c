// Package xmlrpc implements the legacy XML-RPC transport: method call
// encoding, method response decoding and a client bound to one endpoint.
package xmlrpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/transport"
	"github.com/hashicorp-forge/sitekit/pkg/value"
)

// Config contains configuration for an XML-RPC client.
type Config struct {
	// Endpoint is the full XML-RPC URL, e.g. "https://example.org/xmlrpc.php".
	Endpoint string

	UserAgent string

	HTTP transport.HTTPConfig

	// HTTPClient overrides the client built from HTTP.
	HTTPClient *http.Client

	Logger   hclog.Logger
	Observer transport.Observer
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.HTTP.Timeout < 0 {
		return errors.New("HTTP timeout must not be negative")
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Endpoint, validation.Required, is.RequestURL),
	)
}

// Client calls methods on a single XML-RPC endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	logger     hclog.Logger
	observer   transport.Observer
}

// NewClient creates a new XML-RPC client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid XML-RPC client config: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = transport.NewHTTPClient(cfg.HTTP)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = transport.NopObserver{}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = transport.DefaultUserAgent
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     logger.Named("xmlrpc"),
		observer:   observer,
	}, nil
}

// Endpoint returns the URL calls are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call invokes method with positional params. Parameters that cannot be
// encoded fail before any exchange. The returned response is non-nil whenever
// the server answered.
func (c *Client) Call(ctx context.Context, method string, params ...any) (*transport.Response, error) {
	body, err := EncodeMethodCall(method, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode method call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("Accept", "text/xml")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)

	c.logger.Debug("calling method", "method", method, "request_id", requestID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.finish(method, 0, start, err, requestID)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.finish(method, resp.StatusCode, start, err, requestID)
		return nil, err
	}

	v, err := decode(resp.StatusCode, respBody)
	c.finish(method, resp.StatusCode, start, err, requestID)

	return &transport.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Value:      v,
	}, err
}

// decode classifies non-2xx statuses first. A fault carried on an error
// status contributes its code and message to the HTTP error.
func decode(status int, body []byte) (value.Value, error) {
	if !transport.IsSuccess(status) {
		var code, message string
		var fault *apierror.Error
		if _, err := DecodeMethodResponse(body); errors.As(err, &fault) && fault.Kind == apierror.KindServerFault {
			code = strconv.Itoa(fault.FaultCode)
			message = fault.Message
		}
		return value.Null(), transport.ClassifyStatus(status, code, message)
	}
	return DecodeMethodResponse(body)
}

func (c *Client) finish(method string, status int, start time.Time, err error, requestID string) {
	elapsed := time.Since(start)

	c.observer.ObserveExchange(transport.Exchange{
		Transport:  "xmlrpc",
		Operation:  method,
		StatusCode: status,
		Duration:   elapsed,
		Err:        err,
	})

	if err != nil {
		c.logger.Debug("call failed",
			"method", method,
			"status", status,
			"request_id", requestID,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return
	}
	c.logger.Debug("call completed",
		"method", method,
		"status", status,
		"request_id", requestID,
		"duration_ms", elapsed.Milliseconds(),
	)
}
