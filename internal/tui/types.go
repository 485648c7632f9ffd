package tui

type stage int

const (
	stageInput stage = iota
	stageSubmitting
	stageLoading
	stageDisplay
	stageFailed
)

func (s stage) String() string {
	switch s {
	case stageSubmitting:
		return "submitting"
	case stageLoading:
		return "loading"
	case stageDisplay:
		return "display"
	case stageFailed:
		return "failed"
	default:
		return "input"
	}
}

const (
	anchorSummary    = "summary"
	anchorStrengths  = "strengths"
	anchorWeaknesses = "weaknesses"
	anchorFutureWork = "future_work"
	anchorChat       = "chat"
)

var sectionSequence = []string{
	anchorSummary,
	anchorStrengths,
	anchorWeaknesses,
	anchorFutureWork,
	anchorChat,
}

const heroTagline = "Upload a paper, read its analysis, ask it questions."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
)

type composerMode int

const (
	composerModeURL composerMode = iota
	composerModeFile
	composerModeQuestion
)

func (c composerMode) String() string {
	switch c {
	case composerModeFile:
		return "file"
	case composerModeQuestion:
		return "question"
	default:
		return "url"
	}
}

const (
	composerURLPlaceholder      = "Paste a paper URL or arXiv identifier…"
	composerFilePlaceholder     = "Path to a PDF (max 50 MB)…"
	composerQuestionPlaceholder = "Ask a question about this paper…"
)
