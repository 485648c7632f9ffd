package tui

import "github.com/charmbracelet/lipgloss"

var (
	subtitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	strengthStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c"))
	weaknessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75"))
	futureStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#61afef"))

	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd166"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8ecae6"))

	heroAccentColor        = lipgloss.Color("#4f8cff")
	heroBackgroundColor    = lipgloss.Color("#0d1b33")
	heroTextColor          = lipgloss.Color("#e8f0ff")
	heroSecondaryTextColor = lipgloss.Color("#9db8e8")

	logoStyle        = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroAccentColor).Padding(0, 2)
	heroTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor)
	heroBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Background(heroBackgroundColor).Padding(0, 2)
	taglineStyle     = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	selectedBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#a3be8c")).Padding(0, 2)

	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(heroAccentColor).Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 2)

	failureTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	failureBoxStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#e06c75")).Padding(1, 2)
)
