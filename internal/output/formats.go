package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	http "github.com/roshangit23/ReadyTestAPI/internal/http"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat maps a flag value to an OutputFormat. The empty string is text.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *http.Request, baseURL string) string
	FormatResponse(resp *http.Response) string
}

// RequestData is the structured form of a request
type RequestData struct {
	Method    string            `json:"method" yaml:"method"`
	URL       string            `json:"url" yaml:"url"`
	Auth      string            `json:"auth" yaml:"auth"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Form      map[string]string `json:"form,omitempty" yaml:"form,omitempty"`
	Files     []string          `json:"files,omitempty" yaml:"files,omitempty"`
	Body      interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp string            `json:"timestamp" yaml:"timestamp"`
}

// TimingData holds the phases of a request in milliseconds
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData is the structured form of a response
type ResponseData struct {
	StatusCode   int               `json:"statusCode" yaml:"statusCode"`
	Status       string            `json:"status" yaml:"status"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body         interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	ResponseTime int64             `json:"responseTimeMs" yaml:"responseTimeMs"`
	Timing       *TimingData       `json:"timing,omitempty" yaml:"timing,omitempty"`
	Timestamp    string            `json:"timestamp" yaml:"timestamp"`
}

// NewRequestData builds the structured form of req.
func NewRequestData(req *http.Request, baseURL string) RequestData {
	return RequestData{
		Method:    req.Method,
		URL:       req.URL(baseURL),
		Auth:      req.Auth.Kind.String(),
		Headers:   req.Headers,
		Form:      req.Form,
		Files:     req.Files,
		Body:      decodeBody(req.Body),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// NewResponseData builds the structured form of resp. Timing is only
// included when verbose.
func NewResponseData(resp *http.Response, verbose bool) ResponseData {
	headers := make(map[string]string, len(resp.Headers))
	for key, values := range resp.Headers {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	data := ResponseData{
		StatusCode:   resp.StatusCode,
		Status:       resp.Status,
		Headers:      headers,
		Body:         decodeBody(resp.GetBody()),
		ResponseTime: resp.GetResponseTimeMillis(),
		Timestamp:    time.Now().Format(time.RFC3339),
	}

	if verbose {
		t := resp.Timing
		data.Timing = &TimingData{
			DNSLookup:       t.DNSLookupTime.Milliseconds(),
			TCPConnection:   t.TCPConnectTime.Milliseconds(),
			TLSHandshake:    t.TLSHandshakeTime.Milliseconds(),
			TimeToFirstByte: resp.GetTimeToFirstByteMillis(),
			ContentTransfer: t.ContentTransferTime.Milliseconds(),
			Total:           t.TotalTime.Milliseconds(),
		}
	}

	return data
}

// decodeBody returns JSON bodies as values and anything else as a string.
func decodeBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	if gjson.ValidBytes(body) {
		return gjson.ParseBytes(body).Value()
	}
	return string(body)
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req *http.Request, baseURL string) string {
	return f.marshal("request", NewRequestData(req, baseURL))
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal("response", NewResponseData(resp, f.Verbose))
}

func (f *JSONFormatter) marshal(what string, v interface{}) string {
	var out []byte
	var err error
	if f.Pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal %s: %s"}`, what, err)
	}
	return string(out)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

// FormatRequest formats a request as a YAML document
func (f *YAMLFormatter) FormatRequest(req *http.Request, baseURL string) string {
	return f.marshal("request", NewRequestData(req, baseURL))
}

// FormatResponse formats a response as a YAML document
func (f *YAMLFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal("response", NewResponseData(resp, f.Verbose))
}

func (f *YAMLFormatter) marshal(what string, v interface{}) string {
	out, err := yaml.Marshal(map[string]interface{}{what: v})
	if err != nil {
		return fmt.Sprintf("error: failed to marshal %s: %s\n", what, err)
	}
	return "---\n" + string(out)
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}
