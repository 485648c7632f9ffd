// Package export downloads rendered paper summaries and saves them locally.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/csheth/researchrag/internal/paper"
	"github.com/csheth/researchrag/internal/service"
)

var filenameParam = regexp.MustCompile(`(?i)filename\s*=\s*"?([^";]+)"?`)

// Download describes a delivered artifact.
type Download struct {
	Name string
	Path string
	Size int64
}

// Fetcher renders an artifact for a paper.
type Fetcher interface {
	Export(ctx context.Context, paperID string, format paper.Format) (paper.Artifact, error)
}

// Sink hands a complete payload to the user.
type Sink interface {
	Deliver(ctx context.Context, name string, data []byte) (Download, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller fetches an artifact and delivers it through a sink.
type Controller struct {
	fetcher Fetcher
	sink    Sink
	logger  *slog.Logger
}

// New wires a controller.
func New(fetcher Fetcher, sink Sink, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		sink:    sink,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Export fetches the whole payload for paperID in format and delivers it under the name the
// service suggested.
func (c *Controller) Export(ctx context.Context, paperID string, format paper.Format) (Download, error) {
	if strings.TrimSpace(paperID) == "" {
		return Download{}, service.Validation("export", "Paper id is required")
	}
	if !format.Valid() {
		return Download{}, service.Validation("export", "Format must be 'pdf' or 'markdown'")
	}
	artifact, err := c.fetcher.Export(ctx, paperID, format)
	if err != nil {
		c.logger.Warn("export_failed", "paper_id", paperID, "format", string(format), "error", err)
		return Download{}, err
	}
	name := Filename(artifact.ContentDisposition, format)
	download, err := c.sink.Deliver(ctx, name, artifact.Data)
	if err != nil {
		c.logger.Warn("export_delivery_failed", "paper_id", paperID, "name", name, "error", err)
		return Download{}, &service.Error{Op: "export", Kind: service.KindTransport, Message: paper.MsgExportFailed, Err: err}
	}
	c.logger.Info("export_saved", "paper_id", paperID, "format", string(format), "path", download.Path, "bytes", download.Size)
	return download, nil
}

// DefaultFilename is used when the service gives no usable hint.
func DefaultFilename(format paper.Format) string {
	return "paper-summary." + string(format)
}

// Filename picks the file name from a Content-Disposition value.
func Filename(disposition string, format paper.Format) string {
	if name := sanitize(parseDisposition(disposition)); name != "" {
		return name
	}
	return DefaultFilename(format)
}

func parseDisposition(disposition string) string {
	disposition = strings.TrimSpace(disposition)
	if disposition == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}
	if m := filenameParam.FindStringSubmatch(disposition); len(m) > 1 {
		return m[1]
	}
	return ""
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	switch name {
	case ".", "..", "/", "":
		return ""
	}
	return name
}

func (d Download) String() string {
	return fmt.Sprintf("%s (%d bytes)", d.Path, d.Size)
}
