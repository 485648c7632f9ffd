package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/researchrag/internal/chat"
	"github.com/csheth/researchrag/internal/export"
	"github.com/csheth/researchrag/internal/paper"
	"github.com/csheth/researchrag/internal/session"
	"github.com/csheth/researchrag/internal/submit"
)

type selectedFile struct {
	Name  string
	Size  int64
	Pages int
	Intro string
}

type fileSelectedMsg struct {
	file selectedFile
	err  error
}

type submitResultMsg struct {
	result paper.UploadResult
	err    error
}

type summaryResultMsg struct {
	paperID  string
	analysis paper.Analysis
	err      error
}

type chatResultMsg struct {
	paperID  string
	question string
	reply    chat.Turn
	err      error
}

type exportResultMsg struct {
	paperID  string
	format   paper.Format
	download export.Download
	err      error
}

func selectFileJob(controller *submit.Controller, path string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		file, info, err := submit.LoadFile(path)
		if err != nil {
			return fileSelectedMsg{err: err}, err
		}
		if err := controller.Select(file); err != nil {
			return fileSelectedMsg{err: err}, err
		}
		return fileSelectedMsg{file: selectedFile{
			Name:  file.Name,
			Size:  file.Size,
			Pages: info.Pages,
			Intro: info.Preview,
		}}, nil
	}
}

func submitURLJob(controller *submit.Controller, raw string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result, err := controller.SubmitURL(ctx, raw)
		return submitResultMsg{result: result, err: err}, err
	}
}

func submitSelectedJob(controller *submit.Controller) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		result, err := controller.SubmitSelected(ctx)
		return submitResultMsg{result: result, err: err}, err
	}
}

func loadSummaryJob(store *session.Store, paperID string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		analysis, err := store.Load(ctx, paperID)
		return summaryResultMsg{paperID: paperID, analysis: analysis, err: err}, err
	}
}

func askJob(controller *chat.Controller, paperID, question string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		reply, err := controller.Ask(ctx, paperID, question)
		return chatResultMsg{paperID: paperID, question: question, reply: reply, err: err}, err
	}
}

func exportJob(controller *export.Controller, paperID string, format paper.Format) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		download, err := controller.Export(ctx, paperID, format)
		return exportResultMsg{paperID: paperID, format: format, download: download, err: err}, err
	}
}
