package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/researchrag/internal/chat"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	composerHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
		composerHeight: 1,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	l.composerHeight = 1
	// hero box, status bar, composer panel and message lines
	const chrome = 14
	contentHeight := height - chrome - l.composerHeight
	if contentHeight < 6 {
		contentHeight = 6
	}
	l.viewportHeight = contentHeight
}

type displayView struct {
	content string
	anchors map[string]int
}

// contentBuilder counts rendered lines so section anchors map to viewport offsets.
type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (m *model) wrapWidth(indent int) int {
	width := m.viewport.Width - indent
	if width < 20 {
		width = 20
	}
	return width
}

func (m *model) buildDisplayContent() displayView {
	anchors := map[string]int{}
	cb := &contentBuilder{}
	if !m.hasAnalysis {
		return displayView{content: "", anchors: anchors}
	}
	analysis := m.analysis

	anchors[anchorSummary] = cb.lines
	cb.WriteString(sectionHeaderStyle.Render("Summary"))
	cb.WriteRune('\n')
	if strings.TrimSpace(analysis.Summary) == "" {
		cb.WriteString(helperStyle.Render("No summary available."))
	} else {
		cb.WriteString(wordwrap.String(strings.TrimSpace(analysis.Summary), m.wrapWidth(0)))
	}
	cb.WriteString("\n\n")

	m.writeBulletSection(cb, anchors, anchorStrengths, "Strengths", strengthStyle, analysis.Pros)
	m.writeBulletSection(cb, anchors, anchorWeaknesses, "Weaknesses", weaknessStyle, analysis.Cons)
	m.writeBulletSection(cb, anchors, anchorFutureWork, "Future Work", futureStyle, analysis.FutureWork)

	anchors[anchorChat] = cb.lines
	m.writeConversation(cb)
	return displayView{content: strings.TrimRight(cb.String(), "\n"), anchors: anchors}
}

func (m *model) writeBulletSection(cb *contentBuilder, anchors map[string]int, anchor, title string, bullet lipgloss.Style, items []string) {
	anchors[anchor] = cb.lines
	cb.WriteString(sectionHeaderStyle.Render(title))
	cb.WriteRune('\n')
	if len(items) == 0 {
		cb.WriteString(helperStyle.Render("Nothing noted."))
		cb.WriteString("\n\n")
		return
	}
	wrap := m.wrapWidth(4)
	for _, item := range items {
		lines := strings.Split(wordwrap.String(strings.TrimSpace(item), wrap), "\n")
		for i, line := range lines {
			prefix := "    "
			if i == 0 {
				prefix = "  " + bullet.Render("•") + " "
			}
			cb.WriteString(prefix + line)
			cb.WriteRune('\n')
		}
	}
	cb.WriteRune('\n')
}

func (m *model) writeConversation(cb *contentBuilder) {
	cb.WriteString(sectionHeaderStyle.Render("Ask the Paper"))
	cb.WriteRune('\n')
	if len(m.turns) == 0 && m.pendingAsk == "" {
		cb.WriteString(helperStyle.Render("Press q to ask a question about this paper."))
		cb.WriteRune('\n')
		return
	}
	wrap := m.wrapWidth(4)
	for _, turn := range m.turns {
		m.writeTurn(cb, turn, wrap)
	}
	if m.pendingAsk != "" {
		m.writeTurn(cb, chat.Turn{Role: chat.RoleUser, Content: m.pendingAsk}, wrap)
		cb.WriteString(helperStyle.Render("  " + m.spinner.View() + " waiting for answer…"))
		cb.WriteRune('\n')
	}
}

func (m *model) writeTurn(cb *contentBuilder, turn chat.Turn, wrap int) {
	label := assistantLabelStyle.Render("Assistant")
	if turn.Role == chat.RoleUser {
		label = userLabelStyle.Render("You")
	}
	cb.WriteString(label)
	cb.WriteRune('\n')
	for _, line := range strings.Split(wordwrap.String(strings.TrimSpace(turn.Content), wrap), "\n") {
		cb.WriteString("  " + line)
		cb.WriteRune('\n')
	}
}
