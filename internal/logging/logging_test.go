package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"dsn", "postgres://admin:hunter2@db:5432/app", "postgres://*:*@db:5432/app"},
		{"password pair", "host=db password=hunter2 user=x", "host=db password=*** user=x"},
		{"quoted password", "user='app' password='a b' host=db", "user='app' password=*** host=db"},
		{"quoted password with escape", `password='it\'s secret' sslmode=disable`, "password=*** sslmode=disable"},
		{"double quoted password", `password = "a b"`, "password = ***"},
		{"unterminated quote", "password='a b", "password=***"},
		{"bearer", "Authorization: Bearer abc.def.ghi", "Authorization: Bearer ***"},
		{"api key", "url?api_key=XYZ&x=1", "url?api_key=***&x=1"},
		{"basic", "Authorization: Basic dXNlcjpwYXNz", "Authorization: Basic ***"},
		{"nothing secret", "SELECT * FROM users", "SELECT * FROM users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Mask(tt.input))
		})
	}
}

func TestInitForCLI(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)
	defer InitForCLI(LevelError, &bytes.Buffer{})

	Debug("sql", "hidden %d", 1)
	Info("sql", "opened %s", "postgres://u:p@h/db")
	Error("http", errors.New("boom"), "send failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "subsystem=sql")
	assert.Contains(t, out, "postgres://*:*@h/db")
	assert.Contains(t, out, "error=boom")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
