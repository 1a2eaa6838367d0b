// Package reqstate accumulates the request configuration of one scenario
// across steps and turns it into a concrete request when it is sent.
package reqstate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roshangit23/ReadyTestAPI/internal/http"
	"github.com/roshangit23/ReadyTestAPI/internal/logging"
)

// Resolver maps a logical endpoint name to its path template.
// *config.Table satisfies it.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Sender dispatches an assembled request. *http.Client satisfies it.
type Sender interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// State is the mutable request record of a single scenario.
// It is not safe for concurrent use; each scenario owns its own State.
type State struct {
	resolver Resolver
	sender   Sender

	baseURI     string
	headers     map[string]string
	auth        http.Auth
	body        []byte
	queryKeys   []string
	queryParams map[string]string
	pathParams  map[string]string
	formParams  map[string]string
	files       []string
	cookies     map[string]string

	last *http.Response
}

// New creates an empty State.
func New(resolver Resolver, sender Sender) *State {
	return &State{
		resolver:    resolver,
		sender:      sender,
		auth:        http.NoAuth(),
		headers:     make(map[string]string),
		queryParams: make(map[string]string),
		pathParams:  make(map[string]string),
		formParams:  make(map[string]string),
		cookies:     make(map[string]string),
	}
}

// SetBaseURI sets the URI every endpoint is relative to.
func (s *State) SetBaseURI(uri string) {
	s.baseURI = uri
}

// SetHeaders merges headers into the current set.
func (s *State) SetHeaders(headers map[string]string) {
	merge(s.headers, headers)
}

// SetBasicAuth replaces the active auth with preemptive basic credentials.
func (s *State) SetBasicAuth(username, password string) {
	s.auth = http.BasicAuth(username, password)
}

// SetBearerToken replaces the active auth with a bearer token.
func (s *State) SetBearerToken(token string) {
	s.auth = http.BearerAuth(token)
}

// SetAPIKey replaces the active auth with an api key sent in header.
func (s *State) SetAPIKey(header, value string) {
	s.auth = http.APIKeyAuth(header, value)
}

// SetDigestAuth replaces the active auth with digest credentials.
func (s *State) SetDigestAuth(username, password string) {
	s.auth = http.DigestAuth(username, password)
}

// SetOAuth1 replaces the active auth with OAuth 1.0a credentials.
func (s *State) SetOAuth1(consumerKey, consumerSecret, accessToken, tokenSecret string) {
	s.auth = http.OAuth1Auth(consumerKey, consumerSecret, accessToken, tokenSecret)
}

// SetBody replaces the request body.
func (s *State) SetBody(body []byte) {
	s.body = body
}

// SetQueryParams merges params into the query string. A key set again keeps
// its original position and takes the new value.
func (s *State) SetQueryParams(params map[string]string) {
	for _, key := range sortedKeys(params) {
		s.SetQueryParam(key, params[key])
	}
}

// SetQueryParam sets a single query parameter, appending it if new.
func (s *State) SetQueryParam(key, value string) {
	if _, ok := s.queryParams[key]; !ok {
		s.queryKeys = append(s.queryKeys, key)
	}
	s.queryParams[key] = value
}

// SetPathParams merges values for {name} placeholders.
func (s *State) SetPathParams(params map[string]string) {
	merge(s.pathParams, params)
}

// AddMultiPart attaches a file, sent as a multipart part.
func (s *State) AddMultiPart(path string) {
	s.files = append(s.files, path)
}

// SetFormParams merges urlencoded form fields.
func (s *State) SetFormParams(params map[string]string) {
	merge(s.formParams, params)
}

// AddCookie sets a cookie.
func (s *State) AddCookie(name, value string) {
	s.cookies[name] = value
}

// BaseURI returns the configured base URI, empty until set.
func (s *State) BaseURI() string { return s.baseURI }

// Auth returns the active auth descriptor.
func (s *State) Auth() http.Auth { return s.auth }

func (s *State) Body() []byte { return s.body }

func (s *State) Files() []string { return append([]string(nil), s.files...) }

// PathParams returns a copy of the path parameters.
func (s *State) PathParams() map[string]string {
	return clone(s.pathParams)
}

// QueryParams returns the query parameters in insertion order.
func (s *State) QueryParams() [][2]string {
	out := make([][2]string, 0, len(s.queryKeys))
	for _, key := range s.queryKeys {
		out = append(out, [2]string{key, s.queryParams[key]})
	}
	return out
}

// Endpoint substitutes path params into template and appends the query
// string. Placeholders without a value are left as written and nothing is
// percent-encoded.
func (s *State) Endpoint(template string) string {
	endpoint := s.fillPath(template)

	if len(s.queryKeys) == 0 {
		return endpoint
	}

	pairs := make([]string, 0, len(s.queryKeys))
	for _, key := range s.queryKeys {
		pairs = append(pairs, key+"="+s.queryParams[key])
	}
	return endpoint + "?" + strings.Join(pairs, "&")
}

// fillPath replaces {name} tokens of template in one left-to-right pass.
// Substituted values are never rescanned.
func (s *State) fillPath(template string) string {
	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			break
		}
		name := rest[open+1 : open+end]
		if inner := strings.LastIndexByte(name, '{'); inner >= 0 {
			// "{a{b}": only the innermost braces form a token
			b.WriteString(rest[:open+1+inner])
			rest = rest[open+1+inner:]
			continue
		}
		b.WriteString(rest[:open])
		if value, ok := s.pathParams[name]; ok {
			b.WriteString(value)
		} else {
			b.WriteString(rest[open : open+end+1])
		}
		rest = rest[open+end+1:]
	}
	b.WriteString(rest)
	return b.String()
}

// Send resolves the endpoint name, assembles the request and dispatches it.
func (s *State) Send(ctx context.Context, method, name string) (*http.Response, error) {
	template, err := s.resolver.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", name, err)
	}
	return s.SendPath(ctx, method, template)
}

// SendPath dispatches to a literal path template, bypassing name resolution.
func (s *State) SendPath(ctx context.Context, method, template string) (*http.Response, error) {
	req := s.Request(method, template)

	logging.Debug("reqstate", "sending %s %s", req.Method, req.URL(""))

	resp, err := s.sender.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	s.last = resp
	return resp, nil
}

// Request materializes the accumulated state into a transport request.
func (s *State) Request(method, template string) *http.Request {
	req := http.NewRequest(strings.ToUpper(method), s.Endpoint(template))
	req.BaseURL = s.baseURI
	req.Headers = clone(s.headers)
	req.Form = clone(s.formParams)
	req.Cookies = clone(s.cookies)
	req.Files = s.Files()
	req.Body = s.body
	req.Auth = s.auth
	return req
}

// LastResponse returns the response of the most recent successful send, or nil.
func (s *State) LastResponse() *http.Response {
	return s.last
}

func merge(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

func clone(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	merge(out, m)
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
