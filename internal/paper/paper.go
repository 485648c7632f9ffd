// Package paper holds the domain types shared by the controllers and the typed analysis
// service API they call.
package paper

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxUploadBytes caps PDF uploads at 50 MiB.
const MaxUploadBytes = 50 << 20

// Submission is either a FileSubmission or a URLSubmission.
type Submission interface {
	isSubmission()
}

// FileSubmission carries a PDF payload selected by the user.
type FileSubmission struct {
	Name string
	Data []byte
	Size int64
}

func (FileSubmission) isSubmission() {}

// URLSubmission points the service at a paper hosted elsewhere.
type URLSubmission struct {
	URL string
}

func (URLSubmission) isSubmission() {}

// UploadResult is returned by the ingestion endpoint.
type UploadResult struct {
	PaperID string `json:"paper_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Analysis is the structured summary the service derives for a paper.
type Analysis struct {
	PaperID    string   `json:"paper_id"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Pros       []string `json:"pros"`
	Cons       []string `json:"cons"`
	FutureWork []string `json:"future_work"`
}

// normalize replaces missing lists with empty ones so callers can range without nil checks.
func (a Analysis) normalize() Analysis {
	if a.Pros == nil {
		a.Pros = []string{}
	}
	if a.Cons == nil {
		a.Cons = []string{}
	}
	if a.FutureWork == nil {
		a.FutureWork = []string{}
	}
	return a
}

// Format enumerates the export artifacts the service renders.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "pdf" or "markdown" (and "md" as shorthand).
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pdf":
		return FormatPDF, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want pdf or markdown)", value)
	}
}

func (f Format) Valid() bool {
	return f == FormatPDF || f == FormatMarkdown
}

// Artifact is a rendered export payload.
type Artifact struct {
	Data []byte
	// ContentDisposition is the raw filename hint header, possibly empty.
	ContentDisposition string
	ContentType        string
}

// LooksLikePDF reports whether the payload carries a PDF header within its first KiB, or
// failing that, whether the name has a .pdf extension.
func LooksLikePDF(name string, data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if bytes.Contains(head, []byte("%PDF-")) {
		return true
	}
	return len(data) > 0 && strings.EqualFold(filepath.Ext(name), ".pdf")
}
