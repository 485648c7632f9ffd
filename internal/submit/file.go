package submit

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/csheth/researchrag/internal/paper"
	"github.com/csheth/researchrag/internal/service"
)

const previewLimit = 280

var extraneousWhitespace = regexp.MustCompile(`\s+`)

// Info describes a local PDF before it is uploaded. Zero when the document cannot be parsed.
type Info struct {
	Pages   int
	Preview string
}

// LoadFile reads path into a FileSubmission. Oversized files are rejected before reading.
func LoadFile(path string) (paper.FileSubmission, Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return paper.FileSubmission{}, Info{}, service.Validation("submit", MsgNoFile)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return paper.FileSubmission{}, Info{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.IsDir() {
		return paper.FileSubmission{}, Info{}, service.Validation("submit", MsgNoFile)
	}
	if stat.Size() > paper.MaxUploadBytes {
		return paper.FileSubmission{}, Info{}, service.Validation("submit", MsgTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return paper.FileSubmission{}, Info{}, fmt.Errorf("read %s: %w", path, err)
	}
	file := paper.FileSubmission{Name: filepath.Base(path), Data: data, Size: int64(len(data))}
	info, _ := Inspect(data)
	return file, info, nil
}

// Inspect counts pages and extracts a short plain-text preview.
func Inspect(data []byte) (info Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = Info{}, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, fmt.Errorf("parse pdf: %w", err)
	}
	info.Pages = reader.NumPage()

	content, err := reader.GetPlainText()
	if err != nil {
		return info, nil
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, io.LimitReader(content, 4*previewLimit)); err != nil {
		return info, nil
	}
	text := strings.TrimSpace(extraneousWhitespace.ReplaceAllString(builder.String(), " "))
	if runes := []rune(text); len(runes) > previewLimit {
		text = strings.TrimSpace(string(runes[:previewLimit])) + "…"
	}
	info.Preview = text
	return info, nil
}
