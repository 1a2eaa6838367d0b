package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// TimingInfo contains detailed timing information for an HTTP request
type TimingInfo struct {
	DNSLookupTime       time.Duration
	TCPConnectTime      time.Duration
	TLSHandshakeTime    time.Duration
	TimeToFirstByte     time.Duration
	ContentTransferTime time.Duration
	TotalTime           time.Duration
	StartTime           time.Time
}

// Response is a completed HTTP exchange with its body fully read.
type Response struct {
	StatusCode   int
	Status       string
	Headers      http.Header
	URL          string
	ResponseTime time.Duration
	Timing       TimingInfo
	body         []byte
}

// NewResponse builds a Response from parts, mainly for tests.
func NewResponse(statusCode int, headers http.Header, body []byte, elapsed time.Duration) *Response {
	if headers == nil {
		headers = make(http.Header)
	}
	return &Response{
		StatusCode:   statusCode,
		Status:       http.StatusText(statusCode),
		Headers:      headers,
		ResponseTime: elapsed,
		Timing:       TimingInfo{TotalTime: elapsed},
		body:         body,
	}
}

// GetBody returns the response body as a byte array
func (r *Response) GetBody() []byte {
	return r.body
}

// GetBodyAsString returns the response body as a string
func (r *Response) GetBodyAsString() string {
	return string(r.body)
}

// GetBodyAsJSON unmarshals the response body into the provided interface
func (r *Response) GetBodyAsJSON(v interface{}) error {
	return json.Unmarshal(r.body, v)
}

// GetHeader returns the value of the specified header
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// HasHeader reports whether the header was sent at all, even if empty.
func (r *Response) HasHeader(key string) bool {
	_, ok := r.Headers[http.CanonicalHeaderKey(key)]
	return ok
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the response status code is in the 3xx range
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsError returns true if the response status code indicates an error (4xx or 5xx)
func (r *Response) IsError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 600
}

// GetResponseTimeMillis returns the response time in milliseconds
func (r *Response) GetResponseTimeMillis() int64 {
	return r.ResponseTime.Milliseconds()
}

// GetTimeToFirstByteMillis returns the time to first byte in milliseconds
func (r *Response) GetTimeToFirstByteMillis() int64 {
	return r.Timing.TimeToFirstByte.Milliseconds()
}
