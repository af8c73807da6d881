package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cconform/internal/data/history"
	"cconform/internal/engine/findings"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
	isError     bool
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list         list.Model
	findings     []findings.Finding
	trend        *history.TrendReport
	showTrend    bool
	lastUpdate   time.Time
	fileCount    int
	errorCount   int
	warningCount int
}

type updateMsg struct {
	findings     []findings.Finding
	fileCount    int
	errorCount   int
	warningCount int
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "t":
			if m.trend != nil {
				m.showTrend = !m.showTrend
				return m, nil
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.findings = msg.findings
		m.fileCount = msg.fileCount
		m.errorCount = msg.errorCount
		m.warningCount = msg.warningCount
		m.lastUpdate = time.Now()

		items := make([]list.Item, 0, len(m.findings))
		for _, f := range m.findings {
			items = append(items, item{
				title:   fmt.Sprintf("%s [%s]", f.RuleID, f.Severity),
				desc:    fmt.Sprintf("%s:%d:%d %s", f.FilePath, f.Line, f.Column, f.Message),
				isError: f.Severity == findings.SeverityError,
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files",
		m.lastUpdate.Format("15:04:05"), m.fileCount))

	var summary string
	if len(m.findings) == 0 {
		summary = successStyle.Render("✅ Conformant")
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			errorStyle.Render(fmt.Sprintf("%d Errors", m.errorCount)),
			warningStyle.Render(fmt.Sprintf("%d Warnings", m.warningCount)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("C Conformance Monitor"), status, summary)
	body := m.list.View()
	if m.showTrend && m.trend != nil {
		body = statusStyle.Render(trendBlock(*m.trend)) + "\n" + body
	}
	return docStyle.Render(header + "\n" + body)
}

func trendBlock(report history.TrendReport) string {
	if len(report.Points) == 0 {
		return "no trend data"
	}
	latest := report.Points[len(report.Points)-1]
	return fmt.Sprintf("Trend (%d scans): findings %d (%+d), errors %d (%+d)",
		report.ScanCount,
		latest.FindingCount, latest.DeltaFindings,
		latest.ErrorCount, latest.DeltaErrors,
	)
}

func initialModel(trend *history.TrendReport) model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Conformance Findings"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		trend:      trend,
		lastUpdate: time.Now(),
	}
}
