// Package testutil provides common test utilities for the VRM backend.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase describes a single request against a fully wired handler
// stack. Cases run through http.Handler.ServeHTTP, so whatever middleware
// the engine carries is exercised too.
type HTTPTestCase struct {
	Name    string
	Method  string
	Path    string
	Body    any
	Headers map[string]string

	ExpectedStatus int
	// ExpectedBodyContains are substrings the raw response body must include
	ExpectedBodyContains []string
	// Validate runs after the status and body checks for case-specific assertions
	Validate func(t *testing.T, w *httptest.ResponseRecorder)
}

// RunHTTPTestCases runs each case as a subtest against the handler
func RunHTTPTestCases(t *testing.T, h http.Handler, cases []HTTPTestCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, h, tc)
		})
	}
}

// RunHTTPTestCase performs one request and returns the recorder so callers
// can make further assertions beyond the declarative ones.
func RunHTTPTestCase(t *testing.T, h http.Handler, tc HTTPTestCase) *httptest.ResponseRecorder {
	t.Helper()

	w := DoRequest(t, h, tc.Method, tc.Path, tc.Body, tc.Headers)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, w.Code,
			"unexpected status, body: %s", w.Body.String())
	}
	for _, want := range tc.ExpectedBodyContains {
		assert.Contains(t, w.Body.String(), want)
	}
	if tc.Validate != nil {
		tc.Validate(t, w)
	}
	return w
}

// DoRequest sends a single request through the handler. A non-nil body is
// marshaled to JSON unless it is already an io.Reader or a raw string.
func DoRequest(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	case string:
		reader = bytes.NewBufferString(b)
		contentType = "application/json"
	default:
		data, err := json.Marshal(body)
		require.NoError(t, err, "marshal request body")
		reader = bytes.NewBuffer(data)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// JSONResponse decodes the recorded body into a generic map
func JSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result),
		"decode response body: %s", w.Body.String())
	return result
}

// JSONResponseAs decodes the recorded body into a typed value
func JSONResponseAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result),
		"decode response body: %s", w.Body.String())
	return result
}

// AssertSuccessResponse asserts the standard success envelope and returns
// the data payload for further inspection.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := JSONResponse(t, w)
	assert.Equal(t, true, body["success"], "expected success envelope, got: %s", w.Body.String())
	data, _ := body["data"].(map[string]any)
	return data
}

// AssertErrorResponse asserts the standard error envelope carries the given code
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()
	body := JSONResponse(t, w)
	assert.Equal(t, false, body["success"], "expected error envelope, got: %s", w.Body.String())
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "error envelope missing error object: %s", w.Body.String())
	assert.Equal(t, expectedCode, errObj["code"])
}
