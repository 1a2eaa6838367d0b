package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/icholy/digest"

	"github.com/roshangit23/ReadyTestAPI/internal/logging"
)

// Client sends assembled Requests. It never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new HTTP client with the given options
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithBaseURL sets the base URL used when a request carries none of its own
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the timeout for the client
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHeader adds a header sent with every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// Do executes a request and returns the response with timing information.
// Every failure is returned as a *TransportError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := req.URL(c.baseURL)

	httpReq, err := req.Build(c.baseURL)
	if err != nil {
		return nil, c.fail(req.Method, fullURL, err)
	}

	for key, value := range c.headers {
		if httpReq.Header.Get(key) == "" {
			httpReq.Header.Set(key, value)
		}
	}

	httpClient, err := c.clientFor(ctx, req.Auth)
	if err != nil {
		return nil, c.fail(req.Method, fullURL, err)
	}

	timing := TimingInfo{StartTime: time.Now()}
	httpReq = httpReq.WithContext(httptrace.WithClientTrace(ctx, newTrace(&timing)))

	logging.Debug("http", "%s %s (auth=%s)", httpReq.Method, fullURL, req.Auth.Kind)

	httpResp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, c.fail(req.Method, fullURL, err)
	}
	defer httpResp.Body.Close()

	timing.TotalTime = time.Since(timing.StartTime)

	contentTransferStart := time.Now()
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.fail(req.Method, fullURL, fmt.Errorf("reading body: %w", err))
	}
	timing.ContentTransferTime = time.Since(contentTransferStart)

	logging.Debug("http", "%s %s -> %d in %dms", httpReq.Method, fullURL, httpResp.StatusCode, timing.TotalTime.Milliseconds())

	return &Response{
		StatusCode:   httpResp.StatusCode,
		Status:       httpResp.Status,
		Headers:      httpResp.Header,
		URL:          fullURL,
		ResponseTime: time.Since(timing.StartTime),
		Timing:       timing,
		body:         body,
	}, nil
}

func (c *Client) fail(method, url string, err error) error {
	terr := &TransportError{Method: method, URL: url, Err: err}
	logging.Error("http", err, "error sending request to endpoint %s %s", method, url)
	return terr
}

// clientFor returns the http.Client able to carry auth. Schemes needing a
// challenge round trip or request signing wrap the base transport.
func (c *Client) clientFor(ctx context.Context, auth Auth) (*http.Client, error) {
	switch auth.Kind {
	case AuthNone, AuthBasic, AuthBearer, AuthAPIKey:
		return c.httpClient, nil
	case AuthDigest:
		return &http.Client{
			Timeout: c.httpClient.Timeout,
			Transport: &digest.Transport{
				Username:  auth.Username,
				Password:  auth.Password,
				Transport: c.baseTransport(),
			},
		}, nil
	case AuthOAuth1:
		config := oauth1.NewConfig(auth.ConsumerKey, auth.ConsumerSecret)
		token := oauth1.NewToken(auth.AccessToken, auth.TokenSecret)
		base := &http.Client{Transport: c.baseTransport()}
		signed := config.Client(context.WithValue(ctx, oauth1.HTTPClient, base), token)
		signed.Timeout = c.httpClient.Timeout
		return signed, nil
	default:
		return nil, fmt.Errorf("unsupported auth kind %s", auth.Kind)
	}
}

func (c *Client) baseTransport() http.RoundTripper {
	if c.httpClient.Transport != nil {
		return c.httpClient.Transport
	}
	return http.DefaultTransport
}

func newTrace(timing *TimingInfo) *httptrace.ClientTrace {
	var dnsStart, connectStart, tlsStart time.Time
	lastPhaseEnd := timing.StartTime

	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			lastPhaseEnd = time.Now()
			timing.DNSLookupTime = lastPhaseEnd.Sub(dnsStart)
		},
		ConnectStart: func(network, addr string) {
			connectStart = time.Now()
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				lastPhaseEnd = time.Now()
				timing.TCPConnectTime = lastPhaseEnd.Sub(connectStart)
			}
		},
		TLSHandshakeStart: func() {
			tlsStart = time.Now()
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err == nil {
				lastPhaseEnd = time.Now()
				timing.TLSHandshakeTime = lastPhaseEnd.Sub(tlsStart)
			}
		},
		GotFirstResponseByte: func() {
			timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
	}
}
