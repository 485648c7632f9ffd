package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves the analysis service routes the CLI calls.
func fakeBackend(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"message":"ResearchRAG API is running"}`))
	})
	mux.HandleFunc("POST /upload-paper", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		title := "Attention Is All You Need"
		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
			title = header.Filename
		} else {
			assert.Equal(t, "https://arxiv.org/abs/1706.03762", r.FormValue("url"))
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"paper_id": "p1",
			"title":    title,
			"message":  "Paper processed successfully",
		})
	})
	mux.HandleFunc("GET /summary/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.PathValue("id") != "p1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Paper not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"paper_id":"p1","title":"Attention Is All You Need","summary":"Transformers replace recurrence.","pros":["Parallel training"],"cons":[],"future_work":["Longer contexts"]}`))
	})
	mux.HandleFunc("POST /chat/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body struct {
			Query string `json:"query"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "You asked: " + body.Query})
	})
	mux.HandleFunc("GET /export/{id}/{format}", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Disposition", `attachment; filename="Attention Is All You Need.`+r.PathValue("format")+`"`)
		_, _ = w.Write([]byte("exported " + r.PathValue("format")))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &calls
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestHealthPrintsServiceBanner(t *testing.T) {
	server, _ := fakeBackend(t)

	out, _, err := runCLI(t, "health", "--endpoint", server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL+": ResearchRAG API is running\n", out)
}

func TestSubmitExpandsArxivIdentifier(t *testing.T) {
	server, _ := fakeBackend(t)

	out, _, err := runCLI(t, "submit", "--endpoint", server.URL, "1706.03762")
	require.NoError(t, err)
	assert.Contains(t, out, "Paper processed successfully")
	assert.Contains(t, out, "Paper ID: p1")
}

func TestSubmitUploadsLocalPDF(t *testing.T) {
	server, _ := fakeBackend(t)
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 not really a pdf"), 0o644))

	out, _, err := runCLI(t, "submit", "--endpoint", server.URL, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Title:    notes.pdf")
}

func TestSubmitRejectsEmptyFileLocally(t *testing.T) {
	server, calls := fakeBackend(t)
	path := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, _, err := runCLI(t, "submit", "--endpoint", server.URL, path)
	require.Error(t, err)
	assert.Equal(t, "The selected file is empty", err.Error())
	assert.Zero(t, calls.Load())
}

func TestSummaryPrintsEverySection(t *testing.T) {
	server, _ := fakeBackend(t)

	out, _, err := runCLI(t, "summary", "--endpoint", server.URL, "p1")
	require.NoError(t, err)
	for _, want := range []string{"Attention Is All You Need", "Summary", "Transformers replace recurrence.", "Strengths", "  - Parallel training", "Weaknesses", "Nothing noted.", "Future Work", "  - Longer contexts"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Strengths"), strings.Index(out, "Weaknesses"))
}

func TestSummaryJSON(t *testing.T) {
	server, _ := fakeBackend(t)

	out, _, err := runCLI(t, "summary", "--endpoint", server.URL, "--json", "p1")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "p1", decoded["paper_id"])
	assert.Equal(t, []any{}, decoded["cons"])
}

func TestSummaryReturnsServiceDetail(t *testing.T) {
	server, _ := fakeBackend(t)

	_, _, err := runCLI(t, "summary", "--endpoint", server.URL, "missing")
	require.Error(t, err)
	assert.Equal(t, "Paper not found", err.Error())
}

func TestAskJoinsQuestionWords(t *testing.T) {
	server, _ := fakeBackend(t)

	out, _, err := runCLI(t, "ask", "--endpoint", server.URL, "p1", "what", "is", "attention?")
	require.NoError(t, err)
	assert.Equal(t, "You asked: what is attention?\n", out)
}

func TestExportSavesIntoDownloadDir(t *testing.T) {
	server, _ := fakeBackend(t)
	dir := t.TempDir()

	out, _, err := runCLI(t, "export", "--endpoint", server.URL, "--download-dir", dir, "--format", "md", "p1")
	require.NoError(t, err)

	path := filepath.Join(dir, "Attention Is All You Need.markdown")
	assert.Contains(t, out, "Saved "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "exported markdown", string(data))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	server, calls := fakeBackend(t)

	_, _, err := runCLI(t, "export", "--endpoint", server.URL, "--format", "docx", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
	assert.Zero(t, calls.Load())
}

func TestInvalidEndpointFailsBeforeAnyRequest(t *testing.T) {
	_, _, err := runCLI(t, "health", "--endpoint", "ftp://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must use http or https")
}

func TestEnvironmentSuppliesEndpoint(t *testing.T) {
	server, _ := fakeBackend(t)
	t.Setenv("RESEARCHRAG_ENDPOINT", server.URL)

	out, _, err := runCLI(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "ResearchRAG API is running")
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "researchrag dev\n", out)
}
