// Package submit drives a paper submission, file or URL, to a paper identifier.
package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/csheth/researchrag/internal/paper"
	"github.com/csheth/researchrag/internal/service"
)

// Validation messages shown before any network call.
const (
	MsgEmptyURL  = "Please enter a valid URL"
	MsgNoFile    = "Please select a PDF file"
	MsgEmptyFile = "The selected file is empty"
	MsgTooLarge  = "File exceeds the 50 MB limit"
	MsgNotPDF    = "Only PDF files are supported"
)

// ErrBusy is returned when a submission is already in flight.
var ErrBusy = errors.New("a submission is already in progress")

// Status is the controller's lifecycle position.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a snapshot of the controller. PaperID and Title are set only when Succeeded; Err
// only when Failed.
type State struct {
	Status  Status
	PaperID string
	Title   string
	Err     error
}

// Uploader is the part of the analysis service API the controller needs.
type Uploader interface {
	Upload(ctx context.Context, sub paper.Submission) (paper.UploadResult, error)
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

// Controller owns the upload slot and the single in-flight submission.
type Controller struct {
	uploader Uploader
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	selected *paper.FileSubmission
}

// New returns an idle controller.
func New(uploader Uploader, opts ...Option) *Controller {
	c := &Controller{
		uploader: uploader,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Select fills the upload slot with the first file, replacing anything already there. Extra
// files are dropped; only single-file submissions exist.
func (c *Controller) Select(files ...paper.FileSubmission) error {
	if len(files) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status == StatusSubmitting {
		return ErrBusy
	}
	file := files[0]
	c.selected = &file
	if c.state.Status == StatusFailed {
		c.state = State{Status: StatusIdle}
	}
	return nil
}

// Selected returns the file in the upload slot.
func (c *Controller) Selected() (paper.FileSubmission, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return paper.FileSubmission{}, false
	}
	return *c.selected, true
}

// Clear empties the upload slot and any previous error.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status == StatusSubmitting {
		return ErrBusy
	}
	c.selected = nil
	if c.state.Status == StatusFailed {
		c.state = State{Status: StatusIdle}
	}
	return nil
}

// SubmitSelected uploads the file in the slot.
func (c *Controller) SubmitSelected(ctx context.Context) (paper.UploadResult, error) {
	file, ok := c.Selected()
	if !ok {
		return c.SubmitFile(ctx, nil)
	}
	return c.SubmitFile(ctx, &file)
}

// SubmitFile validates file locally and uploads it.
func (c *Controller) SubmitFile(ctx context.Context, file *paper.FileSubmission) (paper.UploadResult, error) {
	if err := c.begin(); err != nil {
		return paper.UploadResult{}, err
	}
	if err := validateFile(file); err != nil {
		return paper.UploadResult{}, c.fail(err)
	}
	return c.run(ctx, *file)
}

// SubmitURL trims raw and submits it; bare arXiv identifiers are expanded to abstract URLs.
func (c *Controller) SubmitURL(ctx context.Context, raw string) (paper.UploadResult, error) {
	if err := c.begin(); err != nil {
		return paper.UploadResult{}, err
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return paper.UploadResult{}, c.fail(service.Validation("submit", MsgEmptyURL))
	}
	return c.run(ctx, paper.URLSubmission{URL: normalizeURL(trimmed)})
}

// begin moves the controller into Submitting, or reports ErrBusy without touching state.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status == StatusSubmitting {
		return ErrBusy
	}
	c.state = State{Status: StatusSubmitting}
	return nil
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.state = State{Status: StatusFailed, Err: err}
	c.mu.Unlock()
	return err
}

func (c *Controller) run(ctx context.Context, sub paper.Submission) (paper.UploadResult, error) {
	kind := "url"
	if _, ok := sub.(paper.FileSubmission); ok {
		kind = "file"
	}
	result, err := c.uploader.Upload(ctx, sub)
	if err != nil {
		c.logger.Warn("submission_failed", "kind", kind, "error", err)
		return paper.UploadResult{}, c.fail(err)
	}
	if strings.TrimSpace(result.PaperID) == "" {
		return paper.UploadResult{}, c.fail(&service.Error{Op: "upload", Kind: service.KindService, Message: paper.MsgUploadFailed, Err: fmt.Errorf("empty paper id")})
	}

	c.mu.Lock()
	c.state = State{Status: StatusSucceeded, PaperID: result.PaperID, Title: result.Title}
	c.mu.Unlock()
	c.logger.Info("submission_succeeded", "kind", kind, "paper_id", result.PaperID)
	return result, nil
}

func validateFile(file *paper.FileSubmission) error {
	if file == nil {
		return service.Validation("submit", MsgNoFile)
	}
	size := file.Size
	if size <= 0 {
		size = int64(len(file.Data))
	}
	if size > paper.MaxUploadBytes || int64(len(file.Data)) > paper.MaxUploadBytes {
		return service.Validation("submit", MsgTooLarge)
	}
	if len(file.Data) == 0 {
		return service.Validation("submit", MsgEmptyFile)
	}
	if !paper.LooksLikePDF(file.Name, file.Data) {
		return service.Validation("submit", MsgNotPDF)
	}
	return nil
}
