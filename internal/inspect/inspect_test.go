package inspect

import (
	"errors"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshangit23/ReadyTestAPI/internal/http"
)

const userBody = `{"id":7,"name":"Alice","active":true,"tags":["a","b"],"address":{"city":"Oslo"},"posts":[{"id":1},{"id":2}]}`

func jsonResponse(body string, elapsed time.Duration) *http.Response {
	headers := nethttp.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("X-Request-Id", "abc")
	return http.NewResponse(200, headers, []byte(body), elapsed)
}

func TestVerifyStatusCodeAndHeader(t *testing.T) {
	resp := jsonResponse(userBody, 0)

	assert.True(t, VerifyStatusCode(resp, 200))
	assert.False(t, VerifyStatusCode(resp, 201))

	assert.True(t, VerifyHeader(resp, "x-request-id", "abc"))
	assert.False(t, VerifyHeader(resp, "X-Request-Id", "ABC"))
	assert.False(t, VerifyHeader(resp, "X-Missing", ""))
}

func TestVerifyContains(t *testing.T) {
	resp := jsonResponse(userBody, 0)
	assert.True(t, VerifyContains(resp, `"name":"Alice"`))
	assert.False(t, VerifyContains(resp, "Bob"))
}

func TestVerifyResponseTime(t *testing.T) {
	resp := jsonResponse(userBody, 250*time.Millisecond)

	assert.True(t, VerifyResponseTime(resp, 300*time.Millisecond))
	assert.True(t, VerifyResponseTime(resp, 250*time.Millisecond), "threshold is inclusive")
	assert.False(t, VerifyResponseTime(resp, 249*time.Millisecond))
}

func TestVerifyField(t *testing.T) {
	resp := jsonResponse(userBody, 0)

	tests := []struct {
		path     string
		expected string
		want     bool
	}{
		{"$.name", "Alice", true},
		{"$.id", "7", true},
		{"$.active", "true", true},
		{"$.address.city", "Oslo", true},
		{"$.posts[1].id", "2", true},
		{"$.name", "Bob", false},
	}

	for _, tt := range tests {
		t.Run(tt.path+"="+tt.expected, func(t *testing.T) {
			ok, err := VerifyField(resp, tt.path, tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err := VerifyField(resp, "$.missing", "x")
	assert.Error(t, err)
}

func TestExtractValues(t *testing.T) {
	resp := jsonResponse(userBody, 0)

	values, err := ExtractValues(resp, "$.tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, values)

	ids, err := ExtractValues(resp, "$.posts[*].id")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)

	_, err = ExtractValues(jsonResponse("not json", 0), "$.tags")
	assert.Error(t, err)
}

type stubValidator struct{ err error }

func (s stubValidator) Validate(name, body string) error { return s.err }

func TestValidateSchema(t *testing.T) {
	resp := jsonResponse(userBody, 0)

	assert.NoError(t, ValidateSchema(resp, stubValidator{}, "user"))

	cause := errors.New("missing properties: 'email'")
	err := ValidateSchema(resp, stubValidator{err: cause}, "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "user")
}

func TestExtractXML(t *testing.T) {
	headers := nethttp.Header{}
	headers.Set("Content-Type", "application/xml; charset=utf-8")
	resp := http.NewResponse(200, headers, []byte(`<?xml version="1.0"?>
<users count="2">
  <user id="1"><name>Alice</name></user>
  <user id="2"><name>Bob</name></user>
</users>`), 0)

	assert.True(t, IsXML(resp))
	assert.False(t, IsXML(jsonResponse(userBody, 0)))

	root, err := ExtractXML(resp)
	require.NoError(t, err)
	assert.Equal(t, "users", root.Name)
	assert.Equal(t, "2", root.Attrs["count"])
	require.Len(t, root.Children, 2)
	assert.Equal(t, "2", root.Children[1].Attrs["id"])

	name, ok := root.Find("user/name")
	require.True(t, ok)
	assert.Equal(t, "Alice", name.Text)

	_, ok = root.Find("user/email")
	assert.False(t, ok)

	_, err = ExtractXML(jsonResponse(userBody, 0))
	assert.Error(t, err)
}
