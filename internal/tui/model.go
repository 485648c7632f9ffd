package tui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/researchrag/internal/chat"
	"github.com/csheth/researchrag/internal/export"
	"github.com/csheth/researchrag/internal/paper"
	"github.com/csheth/researchrag/internal/session"
	"github.com/csheth/researchrag/internal/submit"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Submit  *submit.Controller
	Session *session.Store
	Chat    *chat.Controller
	Export  *export.Controller

	// Endpoint is shown in the status bar.
	Endpoint string
	// PaperID opens an existing paper instead of the submission form.
	PaperID string
	Logger  *slog.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	return newModel(config)
}

func newModel(config Config) *model {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	composer := textinput.New()
	composer.Placeholder = composerURLPlaceholder
	composer.CharLimit = 2048
	composer.Width = 70
	composer.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	layout := newPageLayout()
	vp := viewport.New(layout.viewportWidth, layout.viewportHeight)
	vp.MouseWheelEnabled = true

	m := &model{
		config:         config,
		stage:          stageInput,
		layout:         layout,
		jobs:           newJobBus(config.Logger),
		runningJobs:    map[string]jobSnapshot{},
		composer:       composer,
		composerMode:   composerModeURL,
		spinner:        spin,
		viewport:       vp,
		sectionAnchors: map[string]int{},
		viewportDirty:  true,
		infoMessage:    "Paste a paper URL or press Tab to upload a PDF.",
	}
	if id := strings.TrimSpace(config.PaperID); id != "" {
		m.paperID = id
		m.stage = stageLoading
		m.composer.Blur()
		m.infoMessage = "Loading paper analysis…"
	}
	return m
}

type model struct {
	config      Config
	stage       stage
	layout      pageLayout
	jobs        *jobBus
	runningJobs map[string]jobSnapshot
	lastJob     jobSnapshot

	composer     textinput.Model
	composerMode composerMode
	spinner      spinner.Model
	viewport     viewport.Model

	selected *selectedFile

	paperID     string
	paperTitle  string
	analysis    paper.Analysis
	hasAnalysis bool
	reloading   bool
	turns       []chat.Turn
	asking      bool
	pendingAsk  string
	exporting   bool

	sectionAnchors map[string]int
	viewportDirty  bool
	infoMessage    string
	errorMessage   string
	helpVisible    bool
}

func (m *model) Init() tea.Cmd {
	if m.stage == stageLoading {
		return tea.Batch(textinput.Blink, m.spinner.Tick, m.jobs.Start(jobKindSummary, loadSummaryJob(m.config.Session, m.paperID)))
	}
	return textinput.Blink
}

func (m *model) busy() bool {
	return m.stage == stageSubmitting || m.stage == stageLoading || m.reloading || m.asking || m.exporting
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			if m.asking {
				m.markViewportDirty()
			}
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.stage == stageDisplay {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.composer.Width = m.layout.viewportWidth - 4
		m.markViewportDirty()
		return m, nil
	case jobSignalMsg:
		m.trackJob(msg.Snapshot)
		return m, nil
	case jobResultEnvelope:
		m.trackJob(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case fileSelectedMsg:
		return m, m.handleFileSelected(msg)
	case submitResultMsg:
		return m, m.handleSubmitResult(msg)
	case summaryResultMsg:
		return m, m.handleSummaryResult(msg)
	case chatResultMsg:
		return m, m.handleChatResult(msg)
	case exportResultMsg:
		return m, m.handleExportResult(msg)
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageInput:
		return m, m.handleInputKey(key)
	case stageSubmitting, stageLoading:
		return m, nil
	case stageDisplay:
		if m.composer.Focused() {
			return m, m.handleQuestionKey(key)
		}
		return m.handleDisplayKey(key)
	case stageFailed:
		return m.handleFailedKey(key)
	default:
		return m, nil
	}
}

func (m *model) handleInputKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyTab:
		m.toggleInputMode()
		return nil
	case tea.KeyCtrlX:
		if m.composerMode == composerModeFile && m.selected != nil {
			if err := m.config.Submit.Clear(); err != nil {
				m.errorMessage = err.Error()
				return nil
			}
			m.selected = nil
			m.errorMessage = ""
			m.infoMessage = "Selection cleared."
		}
		return nil
	case tea.KeyEsc:
		if strings.TrimSpace(m.composer.Value()) != "" {
			m.composer.SetValue("")
			return nil
		}
		return tea.Quit
	case tea.KeyEnter:
		return m.submitComposer()
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	return cmd
}

func (m *model) toggleInputMode() {
	if m.composerMode == composerModeURL {
		m.composerMode = composerModeFile
		m.composer.Placeholder = composerFilePlaceholder
		m.infoMessage = "Type a PDF path and press Enter to select it."
	} else {
		m.composerMode = composerModeURL
		m.composer.Placeholder = composerURLPlaceholder
		m.infoMessage = "Paste a paper URL or arXiv identifier."
	}
	m.composer.SetValue("")
	m.errorMessage = ""
}

func (m *model) submitComposer() tea.Cmd {
	value := strings.TrimSpace(m.composer.Value())
	m.errorMessage = ""
	switch m.composerMode {
	case composerModeFile:
		if value != "" {
			m.composer.SetValue("")
			m.infoMessage = "Reading " + value + "…"
			return m.jobs.Start(jobKindSelect, selectFileJob(m.config.Submit, value))
		}
		m.stage = stageSubmitting
		m.infoMessage = "Uploading and analyzing paper…"
		return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindSubmit, submitSelectedJob(m.config.Submit)))
	default:
		m.stage = stageSubmitting
		m.infoMessage = "Processing paper URL…"
		return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindSubmit, submitURLJob(m.config.Submit, value)))
	}
}

func (m *model) handleQuestionKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		m.composer.SetValue("")
		m.composer.Blur()
		m.infoMessage = ""
		return nil
	case tea.KeyEnter:
		return m.askQuestion()
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	return cmd
}

func (m *model) askQuestion() tea.Cmd {
	question := strings.TrimSpace(m.composer.Value())
	if question == "" {
		m.errorMessage = chat.MsgEmptyQuestion
		return nil
	}
	if m.asking {
		m.infoMessage = "Waiting for the previous answer…"
		return nil
	}
	m.composer.SetValue("")
	m.asking = true
	m.pendingAsk = question
	m.errorMessage = ""
	m.infoMessage = "Thinking…"
	m.markViewportDirty()
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindChat, askJob(m.config.Chat, m.paperID, question)))
}

func (m *model) handleDisplayKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		if m.helpVisible {
			m.helpVisible = false
			return m, nil
		}
		return m, tea.Quit
	case "q", "i":
		m.composerMode = composerModeQuestion
		m.composer.Placeholder = composerQuestionPlaceholder
		m.composer.Focus()
		m.infoMessage = "Enter to send, Esc to cancel."
		return m, textinput.Blink
	case "p":
		return m, m.startExport(paper.FormatPDF)
	case "m":
		return m, m.startExport(paper.FormatMarkdown)
	case "r":
		return m, m.reload()
	case "n":
		m.resetToInput()
		return m, textinput.Blink
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	case "]":
		m.jumpSection(1)
		return m, nil
	case "[":
		m.jumpSection(-1)
		return m, nil
	case "g":
		m.viewport.GotoTop()
		return m, nil
	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(key)
	return m, cmd
}

func (m *model) handleFailedKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "r":
		m.stage = stageLoading
		m.errorMessage = ""
		m.infoMessage = "Loading paper analysis…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindSummary, loadSummaryJob(m.config.Session, m.paperID)))
	case "n":
		m.resetToInput()
		return m, textinput.Blink
	case "esc", "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) startExport(format paper.Format) tea.Cmd {
	if m.exporting {
		m.infoMessage = "An export is already running."
		return nil
	}
	m.exporting = true
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Exporting %s…", format)
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindExport, exportJob(m.config.Export, m.paperID, format)))
}

func (m *model) reload() tea.Cmd {
	if m.reloading {
		return nil
	}
	m.reloading = true
	m.errorMessage = ""
	m.infoMessage = "Refreshing analysis…"
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindSummary, loadSummaryJob(m.config.Session, m.paperID)))
}

// openPaper switches to a new paper and starts loading its analysis.
func (m *model) openPaper(paperID, title string) tea.Cmd {
	if m.paperID != "" && m.paperID != paperID {
		m.config.Chat.Reset(m.paperID)
	}
	m.paperID = paperID
	m.paperTitle = title
	m.analysis = paper.Analysis{}
	m.hasAnalysis = false
	m.turns = nil
	m.asking = false
	m.pendingAsk = ""
	m.reloading = false
	m.stage = stageLoading
	m.composer.SetValue("")
	m.composer.Blur()
	m.errorMessage = ""
	m.infoMessage = "Loading paper analysis…"
	m.viewport.SetYOffset(0)
	m.markViewportDirty()
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindSummary, loadSummaryJob(m.config.Session, paperID)))
}

func (m *model) resetToInput() {
	if m.paperID != "" {
		m.config.Chat.Reset(m.paperID)
	}
	m.paperID = ""
	m.paperTitle = ""
	m.analysis = paper.Analysis{}
	m.hasAnalysis = false
	m.turns = nil
	m.asking = false
	m.pendingAsk = ""
	m.reloading = false
	m.helpVisible = false
	m.stage = stageInput
	m.composerMode = composerModeURL
	m.composer.Placeholder = composerURLPlaceholder
	m.composer.SetValue("")
	m.composer.Focus()
	m.errorMessage = ""
	m.infoMessage = "Paste a paper URL or press Tab to upload a PDF."
	m.markViewportDirty()
}

func (m *model) handleFileSelected(msg fileSelectedMsg) tea.Cmd {
	if m.stage != stageInput {
		return nil
	}
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = ""
		return nil
	}
	file := msg.file
	m.selected = &file
	m.errorMessage = ""
	m.infoMessage = "Press Enter to upload, Ctrl+X to clear, or type another path to replace it."
	return nil
}

func (m *model) handleSubmitResult(msg submitResultMsg) tea.Cmd {
	if m.stage != stageSubmitting {
		return nil
	}
	if msg.err != nil {
		m.stage = stageInput
		m.composer.Focus()
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Fix the input and try again."
		return nil
	}
	m.selected = nil
	return m.openPaper(msg.result.PaperID, msg.result.Title)
}

func (m *model) handleSummaryResult(msg summaryResultMsg) tea.Cmd {
	if msg.paperID != m.paperID {
		return nil
	}
	if errors.Is(msg.err, session.ErrSuperseded) || errors.Is(msg.err, session.ErrClosed) {
		return nil
	}
	m.reloading = false
	if msg.err != nil {
		if m.hasAnalysis {
			m.errorMessage = msg.err.Error()
			m.infoMessage = "Refresh failed. Press r to retry."
			return nil
		}
		m.stage = stageFailed
		m.errorMessage = msg.err.Error()
		m.infoMessage = ""
		return nil
	}
	m.analysis = msg.analysis
	m.hasAnalysis = true
	if strings.TrimSpace(msg.analysis.Title) != "" {
		m.paperTitle = msg.analysis.Title
	}
	m.stage = stageDisplay
	m.errorMessage = ""
	m.infoMessage = "Press q to ask a question, p or m to export."
	m.markViewportDirty()
	return nil
}

func (m *model) handleChatResult(msg chatResultMsg) tea.Cmd {
	if msg.paperID != m.paperID || errors.Is(msg.err, chat.ErrReset) {
		return nil
	}
	m.asking = false
	m.pendingAsk = ""
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Question not sent. Edit and press Enter to retry."
		if strings.TrimSpace(m.composer.Value()) == "" {
			m.composer.SetValue(msg.question)
		}
		m.markViewportDirty()
		return nil
	}
	m.turns = m.config.Chat.Turns(m.paperID)
	m.errorMessage = ""
	m.infoMessage = "Answer received."
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	m.viewport.GotoBottom()
	return nil
}

func (m *model) handleExportResult(msg exportResultMsg) tea.Cmd {
	m.exporting = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = ""
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Saved %s export to %s", msg.format, msg.download.Path)
	return nil
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if !m.viewportDirty {
		return
	}
	view := m.buildDisplayContent()
	m.viewport.SetContent(view.content)
	m.sectionAnchors = view.anchors
	m.viewportDirty = false
}

func (m *model) jumpSection(direction int) {
	m.refreshViewportIfDirty()
	current := m.viewport.YOffset
	if direction > 0 {
		for _, anchor := range sectionSequence {
			if line, ok := m.sectionAnchors[anchor]; ok && line > current {
				m.viewport.SetYOffset(line)
				return
			}
		}
		return
	}
	target := -1
	for _, anchor := range sectionSequence {
		if line, ok := m.sectionAnchors[anchor]; ok && line < current && line > target {
			target = line
		}
	}
	if target >= 0 {
		m.viewport.SetYOffset(target)
	}
}
