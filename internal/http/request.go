package http

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	// multipartFieldName is the part name every attached file is sent under.
	multipartFieldName = "file"
)

// Request is a fully assembled request, ready to be handed to a Client.
//
// Endpoint is either a path relative to the base URL or an absolute URL. Any
// query string it carries is sent exactly as written.
type Request struct {
	Method   string
	BaseURL  string
	Endpoint string
	Headers  map[string]string
	Body     []byte
	Form     map[string]string
	Files    []string
	Cookies  map[string]string
	Auth     Auth
}

// NewRequest creates a new request with the specified method and endpoint
func NewRequest(method, endpoint string) *Request {
	return &Request{
		Method:   method,
		Endpoint: endpoint,
		Headers:  make(map[string]string),
		Form:     make(map[string]string),
		Cookies:  make(map[string]string),
	}
}

// WithHeader adds a header to the request
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithBody sets the raw body of the request
func (r *Request) WithBody(body []byte) *Request {
	r.Body = body
	return r
}

// WithFormParam adds a form field
func (r *Request) WithFormParam(key, value string) *Request {
	r.Form[key] = value
	return r
}

// WithFile attaches a file as a multipart part
func (r *Request) WithFile(path string) *Request {
	r.Files = append(r.Files, path)
	return r
}

// WithCookie adds a cookie
func (r *Request) WithCookie(name, value string) *Request {
	r.Cookies[name] = value
	return r
}

// WithAuth replaces the authentication descriptor
func (r *Request) WithAuth(auth Auth) *Request {
	r.Auth = auth
	return r
}

// URL joins baseURL and the endpoint. Absolute endpoints are returned unchanged.
func (r *Request) URL(baseURL string) string {
	if r.BaseURL != "" {
		baseURL = r.BaseURL
	}
	if isAbsoluteURL(r.Endpoint) || baseURL == "" {
		return r.Endpoint
	}
	if r.Endpoint == "" {
		return baseURL
	}
	if strings.HasPrefix(r.Endpoint, "?") {
		return strings.TrimRight(baseURL, "/") + r.Endpoint
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(r.Endpoint, "/")
}

// Build constructs an http.Request from the Request. Auth schemes that need
// a round trip of their own (digest, oauth1) are applied by the Client.
func (r *Request) Build(baseURL string) (*http.Request, error) {
	fullURL := r.URL(baseURL)
	if fullURL == "" {
		return nil, fmt.Errorf("no URL: base URI is not set and endpoint is empty")
	}

	body, contentType, err := r.encodeBody()
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(strings.ToUpper(r.Method), fullURL, bodyReader)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range r.Headers {
		// Form and multipart bodies need their own content type
		if strings.EqualFold(key, "Content-Type") && (len(r.Files) > 0 || len(r.Form) > 0) {
			continue
		}
		req.Header.Set(key, value)
	}

	for _, name := range sortedKeys(r.Cookies) {
		req.AddCookie(&http.Cookie{Name: name, Value: r.Cookies[name]})
	}

	switch r.Auth.Kind {
	case AuthBasic:
		req.SetBasicAuth(r.Auth.Username, r.Auth.Password)
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+r.Auth.Token)
	case AuthAPIKey:
		req.Header.Set(r.Auth.Header, r.Auth.Value)
	case AuthNone, AuthDigest, AuthOAuth1:
		// nothing to add up front
	}

	return req, nil
}

// encodeBody picks the body encoding: multipart when files are attached,
// urlencoded when only form fields are set, otherwise the raw body as JSON.
func (r *Request) encodeBody() ([]byte, string, error) {
	switch {
	case len(r.Files) > 0:
		return r.encodeMultipart()
	case len(r.Form) > 0:
		values := make(url.Values, len(r.Form))
		for key, value := range r.Form {
			values.Set(key, value)
		}
		return []byte(values.Encode()), contentTypeForm, nil
	case r.Body != nil:
		return r.Body, contentTypeJSON, nil
	default:
		return nil, contentTypeJSON, nil
	}
}

func (r *Request) encodeMultipart() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, key := range sortedKeys(r.Form) {
		if err := writer.WriteField(key, r.Form[key]); err != nil {
			return nil, "", err
		}
	}

	for _, path := range r.Files {
		if err := writeFilePart(writer, path); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

func writeFilePart(writer *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("multipart file: %w", err)
	}
	defer f.Close()

	part, err := writer.CreateFormFile(multipartFieldName, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

func isAbsoluteURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
