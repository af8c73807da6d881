package cli

import (
	tea "github.com/charmbracelet/bubbletea"

	coreapp "cconform/internal/core/app"
	"cconform/internal/data/history"
)

func runUI(app *coreapp.App, trend *history.TrendReport) error {
	m := initialModel(trend)
	p := tea.NewProgram(m, tea.WithAltScreen())

	sendUpdate := func(update coreapp.Update) {
		p.Send(updateMsg{
			findings:     update.Findings,
			fileCount:    update.FileCount,
			errorCount:   update.ErrorCount,
			warningCount: update.WarningCount,
		})
	}

	app.SetUpdateHandler(sendUpdate)

	go func() {
		sendUpdate(app.CurrentUpdate())
	}()

	_, err := p.Run()
	return err
}
