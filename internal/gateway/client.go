// Package gateway is the HTTP client for the Lexe gateway, which fronts the
// user's node and the provisioning backend.
package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrz1836/lexe/internal/metrics"
	"github.com/mrz1836/lexe/internal/version"
	"github.com/mrz1836/lexe/pkg/envconfig"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

const (
	// httpTimeout is the default HTTP request timeout.
	httpTimeout = 30 * time.Second

	// maxResponseBody is the maximum response body size to read (1 MB).
	maxResponseBody = 1 << 20

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-Id"
)

// Endpoint paths.
const (
	pathNodeInfo        = "/app/node_info"
	pathCreateInvoice   = "/app/create_invoice"
	pathPayInvoice      = "/app/pay_invoice"
	pathPayments        = "/app/payments/"
	pathPaymentNote     = "/app/payments/note"
	pathPaymentsUpdated = "/app/payments/updated"
	pathSignup          = "/app/signup"
	pathProvision       = "/app/provision"
)

// StatusError is returned for 4xx responses that are not authentication
// failures. It unwraps to ErrRemote.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("node returned status %d", e.Status)
	}
	return fmt.Sprintf("node returned status %d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	return lexeerr.ErrRemote
}

// HasStatus reports whether err is a StatusError with the given status.
func HasStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// errorBody is the JSON error shape the gateway returns.
type errorBody struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Client talks to the gateway on behalf of one user.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	auth        Authenticator
	rateLimiter *RateLimiter
	retry       RetryConfig
	metrics     *metrics.Metrics
	logger      *zap.Logger
	userAgent   string
}

// ClientOptions configures the client. Zero values select defaults.
type ClientOptions struct {
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RateLimiter overrides the default per-endpoint limiter.
	RateLimiter *RateLimiter
	// Retry overrides the retry policy for idempotent requests.
	Retry *RetryConfig
	// Metrics overrides metrics.Global.
	Metrics *metrics.Metrics
	// Logger receives per-request debug logs.
	Logger *zap.Logger
}

// NewClient creates a client for env authenticating with auth.
func NewClient(env envconfig.WalletEnvConfig, auth Authenticator, opts *ClientOptions) (*Client, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	if auth == nil {
		return nil, lexeerr.ErrMissingCredentials
	}

	c := &Client{
		baseURL: env.GatewayURL,
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		auth:        auth,
		rateLimiter: DefaultRateLimiter(),
		retry:       DefaultRetryConfig(),
		metrics:     metrics.Global,
		logger:      zap.NewNop(),
		userAgent:   version.UserAgent(),
	}

	if opts != nil {
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
		if opts.RateLimiter != nil {
			c.rateLimiter = opts.RateLimiter
		}
		if opts.Retry != nil {
			c.retry = *opts.Retry
		}
		if opts.Metrics != nil {
			c.metrics = opts.Metrics
		}
		if opts.Logger != nil {
			c.logger = opts.Logger
		}
	}
	return c, nil
}

// NodeInfo fetches a snapshot of the node.
func (c *Client) NodeInfo(ctx context.Context) (*types.NodeInfo, error) {
	return retry(ctx, c.retry, func() (*types.NodeInfo, error) {
		var info types.NodeInfo
		if err := c.do(ctx, http.MethodGet, pathNodeInfo, nil, nil, &info); err != nil {
			return nil, err
		}
		return &info, nil
	})
}

// CreateInvoice asks the node for a new invoice.
func (c *Client) CreateInvoice(ctx context.Context, req types.CreateInvoiceRequest) (*types.CreateInvoiceResponse, error) {
	var resp types.CreateInvoiceResponse
	if err := c.do(ctx, http.MethodPost, pathCreateInvoice, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PayInvoice pays an invoice. It is never retried.
func (c *Client) PayInvoice(ctx context.Context, req types.PayInvoiceRequest) (*types.PayInvoiceResponse, error) {
	var resp types.PayInvoiceResponse
	if err := c.do(ctx, http.MethodPost, pathPayInvoice, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPayment looks a payment up on the node. It returns nil when the node
// has no such payment.
func (c *Client) GetPayment(ctx context.Context, req types.GetPaymentRequest) (*types.SdkPayment, error) {
	return retry(ctx, c.retry, func() (*types.SdkPayment, error) {
		var resp types.GetPaymentResponse
		err := c.do(ctx, http.MethodGet, pathPayments+req.Index.String(), nil, nil, &resp)
		if HasStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return resp.Payment, nil
	})
}

// UpdatePaymentNote replaces a payment's note on the node.
func (c *Client) UpdatePaymentNote(ctx context.Context, req types.UpdatePaymentNote) error {
	err := c.do(ctx, http.MethodPut, pathPaymentNote, nil, req, nil)
	if HasStatus(err, http.StatusNotFound) {
		return lexeerr.WithDetails(lexeerr.ErrPaymentNotFound, map[string]string{"index": req.Index.String()})
	}
	return err
}

// FetchPayments returns payments updated after since, ascending by update
// index, at most limit of them.
func (c *Client) FetchPayments(ctx context.Context, since *types.PaymentUpdatedIndex, limit int) ([]types.BasicPayment, error) {
	query := url.Values{}
	if since != nil {
		query.Set("start_seq", strconv.FormatUint(since.Seq, 10))
	}
	query.Set("limit", strconv.Itoa(limit))

	return retry(ctx, c.retry, func() ([]types.BasicPayment, error) {
		var resp struct {
			Payments []types.BasicPayment `json:"payments"`
		}
		if err := c.do(ctx, http.MethodGet, pathPaymentsUpdated, query, nil, &resp); err != nil {
			return nil, err
		}
		return resp.Payments, nil
	})
}

// Signup registers the user.
func (c *Client) Signup(ctx context.Context, req types.SignupRequest) error {
	err := c.do(ctx, http.MethodPost, pathSignup, nil, req, nil)
	switch {
	case err == nil:
		return nil
	case HasStatus(err, http.StatusConflict):
		return lexeerr.WithCause(lexeerr.ErrAlreadySignedUp, err)
	case errors.Is(err, lexeerr.ErrRemote):
		return lexeerr.WithCause(lexeerr.ErrSignupFailed, err)
	default:
		return err
	}
}

// ProvisionStatus reports which enclave versions the node should run and
// has been provisioned with.
func (c *Client) ProvisionStatus(ctx context.Context) (*types.ProvisionStatus, error) {
	return retry(ctx, c.retry, func() (*types.ProvisionStatus, error) {
		var status types.ProvisionStatus
		err := c.do(ctx, http.MethodGet, pathProvision, nil, nil, &status)
		if HasStatus(err, http.StatusNotFound) {
			return &types.ProvisionStatus{}, nil
		}
		if err != nil {
			return nil, err
		}
		return &status, nil
	})
}

// Provision hands the root seed to an enclave release. It is never retried.
func (c *Client) Provision(ctx context.Context, req types.ProvisionRequest) error {
	c.metrics.RecordProvision()
	return c.do(ctx, http.MethodPost, pathProvision, nil, req, nil)
}

// do sends one request and decodes a successful JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) (err error) {
	start := time.Now()
	requestID := uuid.NewString()
	status := 0
	defer func() {
		elapsed := time.Since(start)
		c.metrics.RecordGatewayCall(elapsed, err)
		c.logger.Debug("gateway request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}()

	waited, err := c.rateLimiter.Wait(ctx, method+" "+path)
	if err != nil {
		return lexeerr.WithCause(lexeerr.ErrRateLimited, err)
	}
	if waited {
		c.metrics.RecordRateLimitWait()
	}

	token, err := c.auth.Token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		payload, marshalErr := json.Marshal(in)
		if marshalErr != nil {
			return lexeerr.WithCause(lexeerr.ErrInvalidInput, marshalErr)
		}
		body = bytes.NewReader(payload)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return lexeerr.WithCause(lexeerr.ErrInvalidInput, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(RequestIDHeader, requestID)
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq) //nolint:gosec // G704: URL is built from the validated gateway config
	if err != nil {
		return lexeerr.WithCause(lexeerr.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return lexeerr.WithCause(lexeerr.ErrNetwork, err)
	}
	if len(raw) > maxResponseBody {
		return lexeerr.WithDetails(lexeerr.ErrBadResponse, map[string]string{
			"reason": "response exceeds 1 MiB",
		})
	}

	if err := statusError(resp, raw); err != nil {
		return err
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return lexeerr.WithCause(lexeerr.ErrBadResponse, err)
	}
	return nil
}

// statusError maps a non-2xx response to the error taxonomy.
func statusError(resp *http.Response, raw []byte) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	details := map[string]string{"status": strconv.Itoa(code)}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return lexeerr.WithDetails(lexeerr.ErrCredentialsRejected, details)
	case code == http.StatusTooManyRequests:
		if wait := parseRetryAfter(resp.Header.Get("Retry-After")); wait > 0 {
			details["retry_after"] = wait.String()
		}
		return lexeerr.WithDetails(lexeerr.ErrRateLimited, details)
	case code >= 500:
		details["body"] = truncateBody(string(raw), 256)
		return lexeerr.WithDetails(lexeerr.ErrNetwork, details)
	}

	se := &StatusError{Status: code}
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		se.Code = eb.Code
		se.Message = eb.Msg
	} else {
		se.Message = truncateBody(string(raw), 256)
	}
	return se
}

// truncateBody truncates a string to maxLen bytes.
func truncateBody(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
