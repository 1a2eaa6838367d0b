package http

import (
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRequest_URL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		reqBase  string
		endpoint string
		expected string
	}{
		{"path joined to base", "https://api.example.com", "", "/users", "https://api.example.com/users"},
		{"trailing slash on base", "https://api.example.com/", "", "/users", "https://api.example.com/users"},
		{"no slashes", "https://api.example.com/v1", "", "users", "https://api.example.com/v1/users"},
		{"absolute endpoint wins", "https://api.example.com", "", "http://other.test/x", "http://other.test/x"},
		{"request base overrides client base", "https://api.example.com", "https://staging.example.com", "/users", "https://staging.example.com/users"},
		{"empty endpoint", "https://api.example.com", "", "", "https://api.example.com"},
		{"query only", "https://api.example.com/search", "", "?q=1", "https://api.example.com/search?q=1"},
		{"raw query kept", "https://api.example.com", "", "/users?name=a b&x=%zz", "https://api.example.com/users?name=a b&x=%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest("GET", tt.endpoint)
			req.BaseURL = tt.reqBase
			if got := req.URL(tt.baseURL); got != tt.expected {
				t.Errorf("Expected URL %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestRequest_Build(t *testing.T) {
	req := NewRequest("post", "/users?page=2&sort=name").
		WithHeader("X-Trace", "abc").
		WithBody([]byte(`{"name":"Alice"}`)).
		WithCookie("session", "s1").
		WithCookie("theme", "dark").
		WithAuth(BasicAuth("user", "pass"))

	httpReq, err := req.Build("https://api.example.com")
	if err != nil {
		t.Fatalf("Error building request: %v", err)
	}

	if httpReq.Method != "POST" {
		t.Errorf("Expected method POST, got %s", httpReq.Method)
	}
	if httpReq.URL.RawQuery != "page=2&sort=name" {
		t.Errorf("Expected raw query to be kept, got %s", httpReq.URL.RawQuery)
	}
	if httpReq.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type, got %s", httpReq.Header.Get("Content-Type"))
	}
	if httpReq.Header.Get("X-Trace") != "abc" {
		t.Errorf("Expected X-Trace header")
	}
	user, pass, ok := httpReq.BasicAuth()
	if !ok || user != "user" || pass != "pass" {
		t.Errorf("Expected basic auth user/pass, got %s/%s", user, pass)
	}
	if c, err := httpReq.Cookie("theme"); err != nil || c.Value != "dark" {
		t.Errorf("Expected theme cookie, got %v", c)
	}

	body, _ := io.ReadAll(httpReq.Body)
	if string(body) != `{"name":"Alice"}` {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestRequest_BuildAuthHeaders(t *testing.T) {
	tests := []struct {
		name   string
		auth   Auth
		header string
		want   string
	}{
		{"bearer", BearerAuth("tok"), "Authorization", "Bearer tok"},
		{"api key", APIKeyAuth("X-API-Key", "k1"), "X-API-Key", "k1"},
		{"none", NoAuth(), "Authorization", ""},
		{"digest waits for challenge", DigestAuth("u", "p"), "Authorization", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpReq, err := NewRequest("GET", "/").WithAuth(tt.auth).Build("https://api.example.com")
			if err != nil {
				t.Fatalf("Error building request: %v", err)
			}
			if got := httpReq.Header.Get(tt.header); got != tt.want {
				t.Errorf("Expected %s=%q, got %q", tt.header, tt.want, got)
			}
		})
	}
}

func TestRequest_BuildForm(t *testing.T) {
	req := NewRequest("POST", "/login").
		WithHeader("Content-Type", "application/json").
		WithFormParam("user", "alice").
		WithFormParam("pass", "p w")

	httpReq, err := req.Build("https://api.example.com")
	if err != nil {
		t.Fatalf("Error building request: %v", err)
	}

	if httpReq.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
		t.Errorf("Expected form content type, got %s", httpReq.Header.Get("Content-Type"))
	}
	body, _ := io.ReadAll(httpReq.Body)
	if string(body) != "pass=p+w&user=alice" {
		t.Errorf("Unexpected form body %s", body)
	}
}

func TestRequest_BuildMultipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(path, []byte("hello file"), 0644); err != nil {
		t.Fatal(err)
	}

	req := NewRequest("POST", "/upload").WithFile(path).WithFormParam("kind", "report")
	httpReq, err := req.Build("https://api.example.com")
	if err != nil {
		t.Fatalf("Error building request: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(httpReq.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("Expected multipart content type, got %s", httpReq.Header.Get("Content-Type"))
	}

	reader := multipart.NewReader(httpReq.Body, params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("Error reading multipart body: %v", err)
	}
	if form.Value["kind"][0] != "report" {
		t.Errorf("Expected kind field")
	}
	files := form.File["file"]
	if len(files) != 1 || files[0].Filename != "report.txt" {
		t.Fatalf("Expected one file part named report.txt, got %v", files)
	}
	f, _ := files[0].Open()
	content, _ := io.ReadAll(f)
	if string(content) != "hello file" {
		t.Errorf("Unexpected file content %s", content)
	}
}

func TestRequest_BuildErrors(t *testing.T) {
	if _, err := NewRequest("GET", "").Build(""); err == nil {
		t.Error("Expected error without any URL")
	}
	_, err := NewRequest("POST", "/up").WithFile("/does/not/exist").Build("https://api.example.com")
	if err == nil || !strings.Contains(err.Error(), "multipart file") {
		t.Errorf("Expected multipart file error, got %v", err)
	}
}

func TestAuthKind_String(t *testing.T) {
	if AuthOAuth1.String() != "oauth1" || AuthAPIKey.String() != "apiKey" {
		t.Error("Unexpected auth kind names")
	}
}
