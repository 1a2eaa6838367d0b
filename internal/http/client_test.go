package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Expected method GET, got %s", r.Method)
		}
		if r.URL.Path != "/test" {
			t.Errorf("Expected path /test, got %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "readytest" {
			t.Errorf("Expected client header, got %s", r.Header.Get("User-Agent"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"success"}`))
	}))
	defer server.Close()

	client := NewClient(
		WithTimeout(5*time.Second),
		WithHeader("User-Agent", "readytest"),
		WithBaseURL(server.URL),
	)

	resp, err := client.Do(context.Background(), NewRequest("GET", "/test"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.GetHeader("Content-Type"))
	assert.Equal(t, `{"message":"success"}`, resp.GetBodyAsString())
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, server.URL+"/test", resp.URL)
	assert.Greater(t, resp.ResponseTime, time.Duration(0))

	var parsed map[string]string
	require.NoError(t, resp.GetBodyAsJSON(&parsed))
	assert.Equal(t, "success", parsed["message"])
}

func TestClient_DoTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(WithTimeout(time.Second))
	_, err := client.Do(context.Background(), NewRequest("GET", url+"/gone"))
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "GET", terr.Method)
	assert.Equal(t, url+"/gone", terr.URL)
}

func TestClient_DoDigestAuth(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Digest ") {
			w.Header().Set("WWW-Authenticate", `Digest realm="test", nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", qop="auth", algorithm=MD5`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.Contains(auth, `username="alice"`) {
			t.Errorf("Expected digest username, got %s", auth)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	resp, err := client.Do(context.Background(), NewRequest("GET", "/secure").WithAuth(DigestAuth("alice", "secret")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, attempts)
}

func TestClient_DoOAuth1(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "OAuth ") ||
			!strings.Contains(auth, `oauth_consumer_key="ck"`) ||
			!strings.Contains(auth, `oauth_token="at"`) ||
			!strings.Contains(auth, `oauth_signature_method="HMAC-SHA1"`) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	resp, err := client.Do(context.Background(), NewRequest("GET", "/signed").WithAuth(OAuth1Auth("ck", "cs", "at", "ts")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse(404, nil, []byte("nope"), 15*time.Millisecond)
	assert.True(t, resp.IsError())
	assert.False(t, resp.IsRedirect())
	assert.Equal(t, int64(15), resp.GetResponseTimeMillis())
	assert.False(t, resp.HasHeader("X-Missing"))
}
