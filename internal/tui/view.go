package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

func (m *model) View() string {
	switch m.stage {
	case stageInput:
		return m.viewInput()
	case stageSubmitting, stageLoading:
		return m.viewWaiting()
	case stageDisplay:
		return m.viewDisplay()
	case stageFailed:
		return m.viewFailed()
	default:
		return ""
	}
}

func (m *model) viewInput() string {
	parts := []string{
		m.heroView(),
		m.modeTabsView(),
		m.composerPanel(),
		m.selectedFileView(),
		m.messagesView(),
		m.statusBarView(),
	}
	return joinNonEmpty(parts)
}

func (m *model) viewWaiting() string {
	label := "Processing paper…"
	if m.stage == stageLoading {
		label = "Loading paper analysis…"
	}
	body := fmt.Sprintf("%s %s", m.spinner.View(), label)
	return joinNonEmpty([]string{m.heroView(), helperStyle.Render(body), m.statusBarView()})
}

func (m *model) viewDisplay() string {
	m.refreshViewportIfDirty()
	parts := []string{m.heroView(), m.viewport.View(), m.composerPanel(), m.messagesView()}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	parts = append(parts, m.statusBarView())
	return joinNonEmpty(parts)
}

func (m *model) viewFailed() string {
	lines := []string{
		failureTitleStyle.Render("Paper Not Found"),
		errorStyle.Render(wordwrap.String(m.errorMessage, m.wrapWidth(8))),
		"",
		helperStyle.Render("r: retry  •  n: submit another paper  •  Esc: quit"),
	}
	box := failureBoxStyle.Render(strings.Join(lines, "\n"))
	return joinNonEmpty([]string{m.heroView(), box, m.statusBarView()})
}

func (m *model) heroView() string {
	title := logoStyle.Render("ResearchRAG")
	if m.paperID == "" {
		return lipgloss.JoinVertical(lipgloss.Left, title, taglineStyle.Render(heroTagline))
	}
	name := m.paperTitle
	if strings.TrimSpace(name) == "" {
		name = "Untitled paper"
	}
	content := strings.Join([]string{
		heroTitleStyle.Render(wordwrap.String(name, 60)),
		helperStyle.Render("Paper ID: " + m.paperID),
	}, "\n")
	return lipgloss.JoinVertical(lipgloss.Left, title, heroBoxStyle.Render(content))
}

func (m *model) modeTabsView() string {
	url, file := inactiveTabStyle, inactiveTabStyle
	if m.composerMode == composerModeFile {
		file = activeTabStyle
	} else {
		url = activeTabStyle
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, url.Render("Paper URL"), " ", file.Render("Upload PDF"))
	return lipgloss.JoinHorizontal(lipgloss.Center, tabs, helperStyle.Render("   Tab to switch"))
}

func (m *model) composerPanel() string {
	if m.stage == stageDisplay && !m.composer.Focused() {
		return ""
	}
	return joinNonEmpty([]string{m.composer.View(), helperStyle.Render(m.composerHelpText())})
}

func (m *model) composerHelpText() string {
	switch m.composerMode {
	case composerModeFile:
		return "Enter: select path or upload selection • Ctrl+X: clear • Esc: quit"
	case composerModeQuestion:
		return "Enter: ask • Esc: cancel"
	default:
		return "Enter: analyze • Esc: quit"
	}
}

func (m *model) selectedFileView() string {
	if m.composerMode != composerModeFile || m.selected == nil {
		return ""
	}
	file := m.selected
	meta := fmt.Sprintf("%s  •  %s", file.Name, humanSize(file.Size))
	if file.Pages > 0 {
		meta = fmt.Sprintf("%s  •  %d pages", meta, file.Pages)
	}
	lines := []string{subtitleStyle.Render("Selected"), meta}
	if file.Intro != "" {
		lines = append(lines, helperStyle.Render(wordwrap.String(file.Intro, m.wrapWidth(8))))
	}
	return selectedBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) messagesView() string {
	var parts []string
	if m.errorMessage != "" && m.stage != stageFailed {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.busy() {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	return strings.Join(parts, "\n")
}

func (m *model) statusBarView() string {
	stats := []string{strings.ToUpper(m.stage.String())}
	if m.config.Endpoint != "" {
		stats = append(stats, m.config.Endpoint)
	}
	if m.hasAnalysis {
		stats = append(stats, fmt.Sprintf("Q&A %d", len(m.turns)/2))
	}
	stats = append(stats, m.jobStatusBadges()...)
	if m.stage == stageDisplay && !m.helpVisible {
		stats = append(stats, "? help")
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"↑/↓", "Scroll"},
		{"[/]", "Jump sections"},
		{"g/G", "Top or bottom"},
		{"q", "Ask question"},
		{"p", "Export PDF"},
		{"m", "Export Markdown"},
		{"r", "Refresh analysis"},
		{"n", "New paper"},
		{"Esc", "Quit"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMG"[exp])
}
