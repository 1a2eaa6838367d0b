package cli

import (
	"bytes"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshangit23/ReadyTestAPI/internal/config"
	"github.com/roshangit23/ReadyTestAPI/internal/demoapi"
)

const queriesYAML = `reads:
  allUsers: SELECT * FROM users
  dsn: postgres://app:${READYTEST_CLI_PASSWORD}@db/app
writes:
  seed:
    - INSERT INTO users (name) VALUES ('alice')
    - INSERT INTO users (name) VALUES ('bob')
`

const userSchema = `{
  "type": "object",
  "required": ["id", "name"],
  "properties": {"id": {"type": "integer"}, "name": {"type": "string"}}
}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	api := demoapi.New(demoapi.Credentials{Email: "qa@example.com", Password: "pw"}, "t0k", "Alice")
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// writeProject lays out a settings file, both tables, a schema directory
// and a features directory, and returns the settings path.
func writeProject(t *testing.T, baseURL, feature string) string {
	t.Helper()
	dir := t.TempDir()

	apiPaths := fmt.Sprintf("base:\n  testUrl: %s\n  echo: /echo\nusers:\n  getUser: /users/{id}\n  createUser: /users\n", baseURL)
	settings := `apiPaths: apiPaths.yaml
queries: databaseQueries.yaml
schemas: schemas
features:
  - features
format: progress
timeout: 5s
`

	files := map[string]string{
		"readytest.yaml":         settings,
		"apiPaths.yaml":          apiPaths,
		"databaseQueries.yaml":   queriesYAML,
		"schemas/user.json":      userSchema,
		"features/users.feature": feature,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return filepath.Join(dir, "readytest.yaml")
}

func execute(args ...string) (string, error) {
	out, _, err := executeWithOptions(args...)
	return out, err
}

func executeWithOptions(args ...string) (string, *globalOptions, error) {
	cmd, opts := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := runRoot(cmd, opts)
	return out.String(), opts, err
}

func TestRootCmd(t *testing.T) {
	out, err := execute("--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)

	cmd := NewRootCmd()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "check", "resolve", "send", "coerce"})
}

func TestResolve(t *testing.T) {
	settings := writeProject(t, "http://localhost:1", "Feature: empty\n")

	t.Run("scalar", func(t *testing.T) {
		out, err := execute("--config", settings, "resolve", "getUser")
		require.NoError(t, err)
		assert.Equal(t, "/users/{id}\n", out)
	})

	t.Run("list from queries", func(t *testing.T) {
		out, err := execute("--config", settings, "resolve", "-q", "seed")
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO users (name) VALUES ('alice')\nINSERT INTO users (name) VALUES ('bob')\n", out)
	})

	t.Run("expand environment", func(t *testing.T) {
		t.Setenv("READYTEST_CLI_PASSWORD", "s3cret")
		out, err := execute("--config", settings, "resolve", "-q", "--expand", "dsn")
		require.NoError(t, err)
		assert.Equal(t, "postgres://app:s3cret@db/app\n", out)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := execute("--config", settings, "resolve", "nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrNotFound))
	})
}

func TestCheck(t *testing.T) {
	settings := writeProject(t, "http://localhost:1", "Feature: empty\n")

	out, err := execute("--config", settings, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "apiPaths.yaml: 4 names, 2 groups")
	assert.Contains(t, out, "databaseQueries.yaml: 3 names, 2 groups")

	dup := filepath.Join(t.TempDir(), "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("a:\n  x: 1\nb:\n  x: 2\n"), 0o644))

	out, err = execute("check", dup)
	require.Error(t, err)
	assert.Contains(t, out, "duplicate element name found: x")
}

func TestCoerce(t *testing.T) {
	out, err := execute("coerce", "42", "4.5", "TRUE", `{"a":1}`, "hello")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)

	kinds := make(map[string]string)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		kinds[fields[0]] = fields[1]
	}
	assert.Equal(t, map[string]string{
		"42":      "int",
		"4.5":     "float",
		"TRUE":    "bool",
		`{"a":1}`: "json",
		"hello":   "string",
	}, kinds)
}

func TestSend(t *testing.T) {
	srv := newServer(t)
	settings := writeProject(t, srv.URL, "Feature: empty\n")

	t.Run("path parameters", func(t *testing.T) {
		out, err := execute("--config", settings, "send", "get", "getUser", "--path", "id=1", "--expect-status", "200")
		require.NoError(t, err)
		assert.Contains(t, out, "GET "+srv.URL+"/users/1")
		assert.Contains(t, out, "200 OK")
		assert.Contains(t, out, `"name": "Alice"`)
	})

	t.Run("query parameters keep flag order", func(t *testing.T) {
		out, err := execute("--config", settings, "send", "GET", "echo", "--query", "b=2", "--query", "a=1")
		require.NoError(t, err)
		assert.Contains(t, out, "GET "+srv.URL+"/echo?b=2&a=1")
		assert.Contains(t, out, `"query": "b=2&a=1"`)
	})

	t.Run("typed body with bearer and schema", func(t *testing.T) {
		out, err := execute("--config", settings, "send", "POST", "createUser",
			"-d", "name=Alice", "-d", "age=30", "--bearer", "t0k",
			"--expect-status", "201", "--expect-schema", "user", "-o", "json")
		require.NoError(t, err)
		assert.Contains(t, out, `"statusCode": 201`)
		assert.Contains(t, out, `"auth": "bearer"`)
	})

	t.Run("unexpected status", func(t *testing.T) {
		_, err := execute("--config", settings, "send", "POST", "createUser", "--expect-status", "201")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected status 201, got 401")
	})

	t.Run("bad flag values", func(t *testing.T) {
		_, err := execute("--config", settings, "send", "GET", "getUser", "-H", "no-colon")
		assert.ErrorContains(t, err, "invalid header")

		_, err = execute("--config", settings, "send", "GET", "getUser", "--query", "novalue")
		assert.ErrorContains(t, err, "want key=value")

		_, err = execute("--config", settings, "send", "GET", "getUser", "-o", "xml")
		assert.ErrorContains(t, err, "unknown output format")
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		_, err := execute("--config", settings, "send", "GET", "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrNotFound))
	})
}

func TestRun(t *testing.T) {
	srv := newServer(t)

	passing := `Feature: users
  Scenario: fetch a user
    Given I set path parameters:
      | id | 1 |
    When I send a "GET" request to "getUser"
    Then I expect the response status code to be 200
    And I expect the response to contain field "$.name" with value "Alice"
`
	settings := writeProject(t, srv.URL, passing)

	out, err := execute("--config", settings, "run")
	require.NoError(t, err, out)

	failing := strings.Replace(passing, "to be 200", "to be 500", 1)
	settings = writeProject(t, srv.URL, failing)

	_, err = execute("--config", settings, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test run failed")
}

func TestRun_DuplicateNamesAreFatal(t *testing.T) {
	settings := writeProject(t, "http://localhost:1", "Feature: empty\n")
	queries := filepath.Join(filepath.Dir(settings), "databaseQueries.yaml")
	require.NoError(t, os.WriteFile(queries, []byte("a:\n  allUsers: x\nb:\n  allUsers: y\n"), 0o644))

	_, err := execute("--config", settings, "run")
	var dup *config.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "allUsers", dup.Name)
}

func TestSendAndResolve_DuplicateNamesAreFatal(t *testing.T) {
	settings := writeProject(t, "http://localhost:1", "Feature: empty\n")
	dir := filepath.Dir(settings)
	apiPaths := "base:\n  testUrl: http://localhost:1\nusers:\n  createUser: /users\nlegacy:\n  createUser: /v0/users\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apiPaths.yaml"), []byte(apiPaths), 0o644))

	var dup *config.DuplicateKeyError
	_, err := execute("--config", settings, "send", "POST", "createUser", "-d", "name=Alice")
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "createUser", dup.Name)

	_, err = execute("--config", settings, "resolve", "createUser")
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "createUser", dup.Name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "databaseQueries.yaml"), []byte("a:\n  allUsers: x\nb:\n  allUsers: y\n"), 0o644))
	_, err = execute("--config", settings, "resolve", "-q", "allUsers")
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "allUsers", dup.Name)
}

func TestEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(env, []byte("READYTEST_CLI_ENV=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("READYTEST_CLI_ENV") })

	_, err := execute("--env-file", env, "coerce", "1")
	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv("READYTEST_CLI_ENV"))

	_, err = execute("--env-file", filepath.Join(dir, "missing.env"), "coerce", "1")
	assert.Error(t, err)
}

func TestLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "readytest.log")
	_, opts, err := executeWithOptions("--log-file", logPath, "--verbose", "check", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Nil(t, opts.logOut, "log file is closed after a failed command")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "subsystem=config")
}

func TestLogFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "readytest.log")
	_, opts, err := executeWithOptions("--log-file", logPath, "--log-format", "json", "check", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Nil(t, opts.logOut)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"subsystem":"config"`)

	_, err = execute("--log-format", "xml", "coerce", "1")
	assert.ErrorContains(t, err, "unknown log format")
}
