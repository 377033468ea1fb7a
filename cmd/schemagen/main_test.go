package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go.appointy.com/queryschema/capability"
	"go.appointy.com/queryschema/datamodel"
	"go.appointy.com/queryschema/schemabuilder"
)

const tagYAML = `
models:
  - name: Tag
    fields:
      - {name: id, type: ID, id: true, auto: true, required: true}
      - {name: label, type: String}
`

func writeModel(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(tagYAML), 0o644))
	return dir, path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSDLCommand(t *testing.T) {
	_, path := writeModel(t)

	out, _, err := execute(t, "sdl", "--datamodel", path)
	require.NoError(t, err)
	assert.Contains(t, out, "type Query")
	assert.Contains(t, out, "tags(where: TagWhereInput")
	assert.Contains(t, out, "input TagWhereUniqueInput")

	out, _, err = execute(t, "sdl", "--datamodel", path, "--mode", "legacy")
	require.NoError(t, err)
	assert.Contains(t, out, "enum TagOrderByInput")
}

func TestSDLCommandFromBucket(t *testing.T) {
	dir, _ := writeModel(t)

	out, _, err := execute(t, "sdl", "--datamodel", "file://"+filepath.ToSlash(dir), "--datamodel-key", "models.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "type Tag")
}

func TestIntrospectCommand(t *testing.T) {
	_, path := writeModel(t)

	out, _, err := execute(t, "introspect", "--datamodel", path, "--capabilities", "all")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "__schema")
}

func TestDumpCommand(t *testing.T) {
	_, path := writeModel(t)

	out, _, err := execute(t, "dump", "--datamodel", path, "--schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"Tag"`)
	assert.Contains(t, out, `"TagWhereInput"`)
}

func TestLogLevel(t *testing.T) {
	_, path := writeModel(t)

	_, stderr, err := execute(t, "sdl", "--datamodel", path, "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, "built query schema")

	_, stderr, err = execute(t, "sdl", "--datamodel", path, "--log-level", "error")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestConfigErrors(t *testing.T) {
	_, path := writeModel(t)

	for _, tt := range []struct {
		name string
		args []string
		want string
	}{
		{name: "no data model", args: []string{"sdl"}, want: "no data model configured"},
		{name: "bad mode", args: []string{"sdl", "--datamodel", path, "--mode", "ancient"}, want: "unknown build mode"},
		{name: "missing file", args: []string{"sdl", "--datamodel", path + ".missing"}, want: "no such file"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestMux(t *testing.T) {
	dm, err := datamodel.Parse([]byte(tagYAML))
	require.NoError(t, err)
	mux, err := newMux(schemabuilder.BuildQuerySchema(dm, capability.NewSet()), zaptest.NewLogger(t))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/graphql", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "type Tag")

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "GraphiQL")
}
