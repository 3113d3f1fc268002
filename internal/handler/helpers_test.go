package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func jsonRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	switch v := payload.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(v)
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeResponse(t, resp, &body)
	return body.Error
}

func requireSchema(t *testing.T, name string, resp *http.Response) {
	t.Helper()

	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)
	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)

	var payload interface{}
	decodeResponse(t, resp, &payload)
	require.NoError(t, schema.Validate(payload))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
