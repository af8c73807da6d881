package cli

import (
	"fmt"

	coreapp "cconform/internal/core/app"
	"cconform/internal/core/config"
	"cconform/internal/core/ports"
)

type analysisFactory interface {
	New(cfg *config.Config) (ports.AnalysisService, *coreapp.App, error)
}

type coreAnalysisFactory struct{}

func (coreAnalysisFactory) New(cfg *config.Config) (ports.AnalysisService, *coreapp.App, error) {
	app, err := coreapp.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return app.AnalysisService(), app, nil
}

func initializeAnalysis(cfg *config.Config, factory analysisFactory) (ports.AnalysisService, *coreapp.App, error) {
	if factory == nil {
		return nil, nil, fmt.Errorf("analysis factory is required")
	}
	return factory.New(cfg)
}
