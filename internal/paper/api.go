package paper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/csheth/researchrag/internal/service"
)

// Fallback messages shown when the service does not explain a failure.
const (
	MsgUploadFailed  = "Upload failed"
	MsgURLFailed     = "URL processing failed"
	MsgSummaryFailed = "Failed to get paper summary"
	MsgChatFailed    = "Chat request failed"
	MsgExportFailed  = "Export failed"
	MsgHealthFailed  = "Service unavailable"
)

// API exposes the analysis service routes on top of a transport.
type API struct {
	transport service.Transport
}

// NewAPI wraps transport; it is the only dependency, so tests can pass a fake.
func NewAPI(transport service.Transport) *API {
	return &API{transport: transport}
}

// Upload sends a file or URL submission to POST /upload-paper.
func (a *API) Upload(ctx context.Context, sub Submission) (UploadResult, error) {
	var (
		body        *bytes.Buffer
		contentType string
		fallback    string
		err         error
	)
	switch s := sub.(type) {
	case FileSubmission:
		fallback = MsgUploadFailed
		body, contentType, err = service.MultipartFile("file", s.Name, "application/pdf", s.Data)
	case *FileSubmission:
		if s == nil {
			return UploadResult{}, service.Validation("upload", "Please select a PDF file")
		}
		return a.Upload(ctx, *s)
	case URLSubmission:
		fallback = MsgURLFailed
		body, contentType, err = service.MultipartField("url", s.URL)
	default:
		return UploadResult{}, service.Validation("upload", "Either file or URL must be provided")
	}
	if err != nil {
		return UploadResult{}, &service.Error{Op: "upload", Kind: service.KindValidation, Message: fallback, Err: err}
	}

	resp, err := a.transport.Send(ctx, service.Request{
		Op:          "upload",
		Method:      http.MethodPost,
		Path:        "/upload-paper",
		Body:        body,
		ContentType: contentType,
		Kind:        service.JSON,
		Fallback:    fallback,
	})
	if err != nil {
		return UploadResult{}, err
	}
	var result UploadResult
	if err := service.DecodeJSON("upload", resp, &result, fallback); err != nil {
		return UploadResult{}, err
	}
	if strings.TrimSpace(result.PaperID) == "" {
		return UploadResult{}, &service.Error{Op: "upload", Kind: service.KindService, StatusCode: resp.StatusCode, Message: fallback, Err: fmt.Errorf("upload response missing paper_id")}
	}
	return result, nil
}

// Summary fetches GET /summary/{paper_id}.
func (a *API) Summary(ctx context.Context, paperID string) (Analysis, error) {
	resp, err := a.transport.Send(ctx, service.Request{
		Op:       "summary",
		Method:   http.MethodGet,
		Path:     "/summary/" + url.PathEscape(paperID),
		Kind:     service.JSON,
		Fallback: MsgSummaryFailed,
	})
	if err != nil {
		return Analysis{}, err
	}
	var analysis Analysis
	if err := service.DecodeJSON("summary", resp, &analysis, MsgSummaryFailed); err != nil {
		return Analysis{}, err
	}
	return analysis.normalize(), nil
}

// Chat posts {query} to POST /chat/{paper_id} and returns the answer text.
func (a *API) Chat(ctx context.Context, paperID, query string) (string, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}
	resp, err := a.transport.Send(ctx, service.Request{
		Op:          "chat",
		Method:      http.MethodPost,
		Path:        "/chat/" + url.PathEscape(paperID),
		Body:        bytes.NewReader(payload),
		ContentType: "application/json",
		Kind:        service.JSON,
		Fallback:    MsgChatFailed,
	})
	if err != nil {
		return "", err
	}
	var parsed struct {
		Response string `json:"response"`
	}
	if err := service.DecodeJSON("chat", resp, &parsed, MsgChatFailed); err != nil {
		return "", err
	}
	return parsed.Response, nil
}

// Export downloads GET /export/{paper_id}/{format} as a binary payload.
func (a *API) Export(ctx context.Context, paperID string, format Format) (Artifact, error) {
	if !format.Valid() {
		return Artifact{}, service.Validation("export", "Format must be 'pdf' or 'markdown'")
	}
	resp, err := a.transport.Send(ctx, service.Request{
		Op:       "export",
		Method:   http.MethodGet,
		Path:     "/export/" + url.PathEscape(paperID) + "/" + string(format),
		Kind:     service.Binary,
		Fallback: MsgExportFailed,
	})
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Data:               resp.Body,
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		ContentType:        resp.Header.Get("Content-Type"),
	}, nil
}

// Health calls GET / and returns the service banner message.
func (a *API) Health(ctx context.Context) (string, error) {
	resp, err := a.transport.Send(ctx, service.Request{
		Op:       "health",
		Method:   http.MethodGet,
		Path:     "/",
		Kind:     service.JSON,
		Fallback: MsgHealthFailed,
	})
	if err != nil {
		return "", err
	}
	var parsed struct {
		Message string `json:"message"`
	}
	if err := service.DecodeJSON("health", resp, &parsed, MsgHealthFailed); err != nil {
		return "", err
	}
	return parsed.Message, nil
}
