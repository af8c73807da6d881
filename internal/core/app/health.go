package app

import (
	"context"
	"fmt"
	"time"

	"cconform/internal/shared/util"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.engine == nil {
		status.Status = "degraded"
		status.Components["engine"] = "missing"
	} else {
		status.Components["engine"] = fmt.Sprintf("ok (%d files analyzed)", s.app.FileCount())
	}

	if s.app.activeWatcher != nil {
		status.Components["watcher"] = "ok"
	}

	status.Components["heap"] = fmt.Sprintf("%d MB", util.GetHeapAllocMB())

	return status
}
