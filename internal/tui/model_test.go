package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/csheth/researchrag/internal/chat"
	"github.com/csheth/researchrag/internal/paper"
	"github.com/csheth/researchrag/internal/service"
	"github.com/csheth/researchrag/internal/submit"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m *model, key tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(key)
	drive(t, m, cmd)
}

func openLoadedPaper(t *testing.T, m *model) {
	t.Helper()
	drive(t, m, m.openPaper("p1", "Attention Is All You Need"))
	if m.stage != stageDisplay {
		t.Fatalf("paper did not load, stage=%v err=%q", m.stage, m.errorMessage)
	}
}

func TestSubmitURLLoadsAnalysis(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})
	m.composer.SetValue("2301.00001")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageSubmitting {
		t.Fatalf("stage not updated, got %v want %v", m.stage, stageSubmitting)
	}
	drive(t, m, cmd)

	if m.stage != stageDisplay {
		t.Fatalf("expected display stage, got %v (err=%q)", m.stage, m.errorMessage)
	}
	if m.paperID != "p1" || !m.hasAnalysis {
		t.Fatalf("analysis not loaded: id=%q has=%v", m.paperID, m.hasAnalysis)
	}
	if got := h.svc.uploads[0].(paper.URLSubmission).URL; got != "https://arxiv.org/abs/2301.00001" {
		t.Fatalf("submitted URL mismatch: %q", got)
	}
	view := m.View()
	for _, want := range []string{"Summary", "Strengths", "Weaknesses", "Future Work", "Quadratic memory"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestBlankURLShowsValidationWithoutUpload(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})

	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.stage != stageInput {
		t.Fatalf("expected input stage, got %v", m.stage)
	}
	if m.errorMessage != submit.MsgEmptyURL {
		t.Fatalf("error mismatch: %q", m.errorMessage)
	}
	if h.svc.uploadCount() != 0 {
		t.Fatal("blank URL must not be uploaded")
	}
}

func TestSubmitFailureShowsServiceDetail(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})
	h.svc.uploadErr = &service.Error{Op: "upload", Kind: service.KindService, StatusCode: 400, Message: "Could not download paper from URL"}
	m.composer.SetValue("https://example.com/missing.pdf")

	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.stage != stageInput {
		t.Fatalf("expected input stage after failure, got %v", m.stage)
	}
	if m.errorMessage != "Could not download paper from URL" {
		t.Fatalf("error mismatch: %q", m.errorMessage)
	}
	if !m.composer.Focused() {
		t.Fatal("composer should be focused for another attempt")
	}
}

func TestFileModeSelectsThenUploads(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fixture"), 0o644); err != nil {
		t.Fatal(err)
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.composerMode != composerModeFile {
		t.Fatalf("tab should switch to file mode, got %v", m.composerMode)
	}

	m.composer.SetValue(path)
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.selected == nil || m.selected.Name != "paper.pdf" {
		t.Fatalf("file not selected: %#v (err=%q)", m.selected, m.errorMessage)
	}
	if !strings.Contains(m.View(), "paper.pdf") {
		t.Fatal("selected file should be rendered")
	}
	if h.svc.uploadCount() != 0 {
		t.Fatal("selecting must not upload")
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageDisplay {
		t.Fatalf("expected display stage, got %v (err=%q)", m.stage, m.errorMessage)
	}
	if got := h.svc.uploads[0].(paper.FileSubmission).Name; got != "paper.pdf" {
		t.Fatalf("uploaded file mismatch: %q", got)
	}
}

func TestFileModeClearAndEmptySubmit(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fixture"), 0o644); err != nil {
		t.Fatal(err)
	}
	press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m.composer.SetValue(path)
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if m.selected != nil {
		t.Fatal("ctrl+x should clear the selection")
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.errorMessage != submit.MsgNoFile {
		t.Fatalf("error mismatch: %q", m.errorMessage)
	}
	if h.svc.uploadCount() != 0 {
		t.Fatal("empty slot must not upload")
	}
}

func TestStaleSummaryResultIgnored(t *testing.T) {
	m := newTestModel(t)
	m.paperID = "p2"
	m.stage = stageLoading

	m.Update(summaryResultMsg{paperID: "p1", analysis: paper.Analysis{PaperID: "p1", Title: "Old"}})

	if m.stage != stageLoading || m.hasAnalysis {
		t.Fatalf("stale summary applied: stage=%v has=%v", m.stage, m.hasAnalysis)
	}
}

func TestSummaryFailureShowsNotFound(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})
	h.svc.summaryErr = &service.Error{Op: "summary", Kind: service.KindService, StatusCode: 404, Message: "Paper not found"}

	drive(t, m, m.openPaper("p1", ""))

	if m.stage != stageFailed {
		t.Fatalf("expected failed stage, got %v", m.stage)
	}
	view := m.View()
	if !strings.Contains(view, "Paper Not Found") || !strings.Contains(view, "Paper not found") {
		t.Fatalf("failure view incomplete:\n%s", view)
	}

	h.svc.summaryErr = nil
	press(t, m, keyRunes("r"))
	if m.stage != stageDisplay {
		t.Fatalf("retry should load the paper, got %v", m.stage)
	}

	press(t, m, keyRunes("n"))
	if m.stage != stageInput || m.paperID != "" {
		t.Fatalf("n should return to submission, stage=%v id=%q", m.stage, m.paperID)
	}
}

func TestReloadFailureKeepsAnalysis(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})
	openLoadedPaper(t, m)

	h.svc.summaryErr = errors.New("boom")
	press(t, m, keyRunes("r"))

	if m.stage != stageDisplay || !m.hasAnalysis {
		t.Fatalf("reload failure should keep the analysis, stage=%v", m.stage)
	}
	if m.errorMessage != "boom" {
		t.Fatalf("error mismatch: %q", m.errorMessage)
	}
}

func TestAskQuestionAppendsTurns(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})
	h.svc.answers["What is the contribution?"] = "Self-attention only."
	openLoadedPaper(t, m)

	press(t, m, keyRunes("q"))
	if !m.composer.Focused() || m.composerMode != composerModeQuestion {
		t.Fatalf("q should open the question composer (mode=%v)", m.composerMode)
	}
	m.composer.SetValue("What is the contribution?")
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.asking {
		t.Fatal("asking flag should clear after the answer")
	}
	want := []chat.Turn{
		{Role: chat.RoleUser, Content: "What is the contribution?"},
		{Role: chat.RoleAssistant, Content: "Self-attention only."},
	}
	if len(m.turns) != len(want) || m.turns[0] != want[0] || m.turns[1] != want[1] {
		t.Fatalf("turns mismatch: %#v", m.turns)
	}
	if !strings.Contains(m.View(), "Self-attention only.") {
		t.Fatal("answer should be rendered")
	}
}

func TestAskBlankQuestionRejected(t *testing.T) {
	m, _ := newTestModelWithService(t, Config{})
	openLoadedPaper(t, m)

	press(t, m, keyRunes("q"))
	m.composer.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("blank question should not start a job")
	}
	if m.errorMessage != chat.MsgEmptyQuestion {
		t.Fatalf("error mismatch: %q", m.errorMessage)
	}
}

func TestAskWhilePendingIsIgnored(t *testing.T) {
	m, _ := newTestModelWithService(t, Config{})
	openLoadedPaper(t, m)
	m.asking = true

	press(t, m, keyRunes("q"))
	m.composer.SetValue("Another?")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("second question must wait for the first")
	}
	if m.composer.Value() != "Another?" {
		t.Fatal("question text should be kept")
	}
}

func TestAskFailureRestoresQuestion(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})
	h.svc.chatErr = &service.Error{Op: "chat", Kind: service.KindTransport, Message: "Chat request failed"}
	openLoadedPaper(t, m)

	press(t, m, keyRunes("q"))
	m.composer.SetValue("Why?")
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.turns) != 0 {
		t.Fatalf("failed question must not be appended: %#v", m.turns)
	}
	if m.errorMessage != "Chat request failed" {
		t.Fatalf("error mismatch: %q", m.errorMessage)
	}
	if m.composer.Value() != "Why?" {
		t.Fatalf("question should be restored, got %q", m.composer.Value())
	}
}

func TestChatResultForOtherPaperDropped(t *testing.T) {
	m, _ := newTestModelWithService(t, Config{})
	openLoadedPaper(t, m)
	m.asking = true

	m.Update(chatResultMsg{paperID: "other", question: "Q", reply: chat.Turn{Role: chat.RoleAssistant, Content: "A"}})
	if !m.asking {
		t.Fatal("result for another paper should not clear the pending flag")
	}
}

func TestExportKeySavesArtifact(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})
	openLoadedPaper(t, m)

	press(t, m, keyRunes("p"))

	if m.exporting {
		t.Fatal("export flag should clear")
	}
	if !strings.Contains(m.infoMessage, "report.pdf") {
		t.Fatalf("info should mention the saved file: %q", m.infoMessage)
	}
	data, err := afero.ReadFile(h.fs, filepath.Join("downloads", "report.pdf"))
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if string(data) != "%PDF-1.4 export" {
		t.Fatalf("export payload mismatch: %q", data)
	}
}

func TestExportFailureSurfacesMessage(t *testing.T) {
	m, h := newTestModelWithService(t, Config{})
	h.svc.exportErr = &service.Error{Op: "export", Kind: service.KindService, Message: "Export failed"}
	openLoadedPaper(t, m)

	press(t, m, keyRunes("m"))

	if m.errorMessage != "Export failed" {
		t.Fatalf("error mismatch: %q", m.errorMessage)
	}
	if m.stage != stageDisplay || !m.hasAnalysis {
		t.Fatal("export failure must not touch the analysis")
	}
}

func TestInitialPaperIDLoadsOnInit(t *testing.T) {
	m, _ := newTestModelWithService(t, Config{PaperID: "p1"})
	if m.stage != stageLoading {
		t.Fatalf("expected loading stage, got %v", m.stage)
	}
	drive(t, m, m.Init())
	if m.stage != stageDisplay {
		t.Fatalf("expected display stage, got %v", m.stage)
	}
}

func TestKeyLegendToggle(t *testing.T) {
	m, _ := newTestModelWithService(t, Config{})
	openLoadedPaper(t, m)

	if strings.Contains(m.View(), "Export Markdown") {
		t.Fatal("key legend should be hidden by default")
	}
	press(t, m, keyRunes("?"))
	if !strings.Contains(m.View(), "Export Markdown") {
		t.Fatal("key legend did not appear after toggling help")
	}
	press(t, m, keyRunes("?"))
	if strings.Contains(m.View(), "Export Markdown") {
		t.Fatal("key legend should hide again after second toggle")
	}
}
