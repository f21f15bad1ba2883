package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"wallet_core/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrNotFound is returned when a backend answers 404.
	ErrNotFound = errors.New("backend resource not found")
	// ErrUnexpectedStatus is returned for any other non-2xx answer.
	ErrUnexpectedStatus = errors.New("unexpected backend status")
)

const (
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 64
	defaultUserAgent       = "wallet-core"
)

// TransportOptions tunes the HTTP transport shared by the clients of one build.
type TransportOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxConnsPerHost   int
	UserAgent         string
}

func (o TransportOptions) withDefaults() TransportOptions {
	if o.Timeout <= 0 {
		o.Timeout = defaultRequestTimeout
	}
	if o.MaxConnsPerHost <= 0 {
		o.MaxConnsPerHost = defaultMaxConnsPerHost
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	return o
}

// Transport is the HTTP handle shared by the node, metadata, indexer and identity
// clients of one build. Creating it opens no connections.
type Transport struct {
	client  *fasthttp.Client
	limiter *rate.Limiter
	timeout time.Duration
	buildID string
	logger  *zap.Logger
}

// NewTransport creates a connection-less transport tagged with buildID.
// A non-positive RequestsPerSecond disables rate limiting.
func NewTransport(opts TransportOptions, buildID string, logger *zap.Logger) *Transport {
	opts = opts.withDefaults()

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Transport{
		client: &fasthttp.Client{
			Name:                opts.UserAgent,
			MaxConnsPerHost:     opts.MaxConnsPerHost,
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
		limiter: rate.NewLimiter(limit, opts.Burst),
		timeout: opts.Timeout,
		buildID: buildID,
		logger:  logger.Named("Transport").With(zap.String("buildID", buildID)),
	}
}

// BuildID returns the id of the build this transport belongs to.
func (t *Transport) BuildID() string {
	return t.buildID
}

// GetJSON issues a GET to u and decodes the JSON body into out. client and method
// label the request in metrics and logs.
func (t *Transport) GetJSON(ctx context.Context, client, method string, u *url.URL, out any) (err error) {
	defer func(start time.Time) {
		metrics.CollectRequestsMetric(client, method, err, start)
	}(time.Now())

	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s %s: %w", client, method, err)
	}

	requestURL := u.String()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	t.logger.Debug("Requesting backend", zap.String("client", client), zap.String("url", requestURL))

	deadline := time.Now().Add(t.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := t.client.DoDeadline(req, resp, deadline); err != nil {
		t.logger.Warn("Backend request failed", zap.String("client", client), zap.String("url", requestURL), zap.Error(err))
		return fmt.Errorf("%s %s: request to %s: %w", client, method, requestURL, err)
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusNotFound:
		return fmt.Errorf("%s %s: %w: %s", client, method, ErrNotFound, requestURL)
	case status < 200 || status > 299:
		t.logger.Warn("Backend answered with an error status",
			zap.String("client", client),
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", resp.Body()),
		)
		return fmt.Errorf("%s %s: %w %d from %s", client, method, ErrUnexpectedStatus, status, requestURL)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: decode response from %s: %w", client, method, requestURL, err)
	}
	return nil
}

// endpointURL joins path elements onto base and attaches query.
func endpointURL(base *url.URL, query url.Values, elem ...string) *url.URL {
	u := base.JoinPath(elem...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u
}
