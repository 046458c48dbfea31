package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xgrltd/storefront/internal/interfaces/http/dto"
)

// Client is a browser stand-in: it replays the session cookie the server
// last issued
type Client struct {
	t          *testing.T
	handler    http.Handler
	cookieName string
	cookie     *http.Cookie
}

// NewClient creates a client for handler that tracks cookieName
func NewClient(t *testing.T, handler http.Handler, cookieName string) *Client {
	return &Client{t: t, handler: handler, cookieName: cookieName}
}

// Do sends a request. A string body is sent as is, anything else is JSON
// encoded.
func (c *Client) Do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == c.cookieName {
			c.cookie = ck
		}
	}
	return w
}

// Cookie returns the session cookie last issued, nil before any request
func (c *Client) Cookie() *http.Cookie {
	return c.cookie
}

// SetCookie replaces the tracked session cookie
func (c *Client) SetCookie(cookie *http.Cookie) {
	c.cookie = cookie
}

// Envelope is the decoded shape of every API response
type Envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

// Decode unmarshals the response body into an envelope
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) Envelope[T] {
	t.Helper()
	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// RequireData checks for a successful response with status and returns its
// data
func RequireData[T any](t *testing.T, w *httptest.ResponseRecorder, status int) T {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := Decode[T](t, w)
	require.True(t, env.Success, w.Body.String())
	return env.Data
}

// RequireError checks for a failed response with status and error code
func RequireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *dto.ErrorInfo {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := Decode[json.RawMessage](t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	return env.Error
}
