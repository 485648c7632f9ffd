package service

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReturnsBodyOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summary/p1", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "researchrag/0.1", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"paper_id":"p1"}`))
	}))
	t.Cleanup(server.Close)

	client := New(Config{Endpoint: server.URL + "/", HTTPClient: server.Client()})
	resp, err := client.Send(context.Background(), Request{Op: "summary", Path: "/summary/p1", Kind: JSON})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		PaperID string `json:"paper_id"`
	}
	require.NoError(t, DecodeJSON("summary", resp, &out, "Failed to get paper summary"))
	assert.Equal(t, "p1", out.PaperID)
}

func TestSendPrefersServiceDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Paper not found"}`))
	}))
	t.Cleanup(server.Close)

	client := New(Config{Endpoint: server.URL, HTTPClient: server.Client()})
	_, err := client.Send(context.Background(), Request{Op: "summary", Path: "/summary/missing", Fallback: "Failed to get paper summary"})
	require.Error(t, err)
	assert.Equal(t, "Paper not found", err.Error())
	assert.True(t, errors.Is(err, ErrService))

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestSendFallsBackWithoutDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"plain text", "Internal Server Error"},
		{"no detail field", `{"error":"boom"}`},
		{"non-string detail", `{"detail":[{"msg":"field required"}]}`},
		{"blank detail", `{"detail":"  "}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			client := New(Config{Endpoint: server.URL, HTTPClient: server.Client()})
			_, err := client.Send(context.Background(), Request{Op: "export", Path: "/export/p1/pdf", Kind: Binary, Fallback: "Export failed"})
			require.Error(t, err)
			assert.Equal(t, "Export failed", err.Error())
		})
	}
}

func TestSendNormalizesNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client := New(Config{Endpoint: endpoint})
	_, err := client.Send(context.Background(), Request{Op: "chat", Method: http.MethodPost, Path: "/chat/p1", Fallback: "Chat request failed"})
	require.Error(t, err)
	assert.Equal(t, "Chat request failed", err.Error())
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestSendHonorsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client := New(Config{Endpoint: server.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Send(context.Background(), Request{Op: "upload", Method: http.MethodPost, Path: "/upload-paper", Fallback: "Upload failed"})
	require.Error(t, err)
	assert.Equal(t, "Upload failed", err.Error())
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestPickHTTPClientDefaultsTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, pickHTTPClient(nil, 0).Timeout)

	custom := &http.Client{Timeout: 42 * time.Second}
	assert.Same(t, custom, pickHTTPClient(custom, time.Second))

	bare := &http.Client{}
	got := pickHTTPClient(bare, 5*time.Second)
	assert.Equal(t, 5*time.Second, got.Timeout)
	assert.Zero(t, bare.Timeout)
}

func TestMultipartFileCarriesFilenameAndType(t *testing.T) {
	body, contentType, err := MultipartFile("file", `my "paper".pdf`, "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(body, params["boundary"])
	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, `my "paper".pdf`, part.FileName())
	assert.Equal(t, "application/pdf", part.Header.Get("Content-Type"))
	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestMultipartFieldEncodesValue(t *testing.T) {
	body, contentType, err := MultipartField("url", "https://arxiv.org/abs/2301.00001")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
	assert.Contains(t, body.String(), `name="url"`)
	assert.Contains(t, body.String(), "https://arxiv.org/abs/2301.00001")
}

func TestMessageFallsBack(t *testing.T) {
	assert.Equal(t, "", Message(nil, "x"))
	assert.Equal(t, "Please enter a valid URL", Message(Validation("submit", "Please enter a valid URL"), "x"))
	assert.Equal(t, "boom", Message(errors.New("boom"), "x"))
}
