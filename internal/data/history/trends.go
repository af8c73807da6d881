package history

import (
	"fmt"
	"math"
	"time"
)

func BuildTrendReport(snapshots []Snapshot, window time.Duration) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:    current.Timestamp,
			RunID:        current.RunID,
			FileCount:    current.FileCount,
			FindingCount: current.FindingCount,
			ErrorCount:   current.ErrorCount,
			WarningCount: current.WarningCount,
		}

		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaFiles = current.FileCount - prev.FileCount
			point.DeltaFindings = current.FindingCount - prev.FindingCount
			point.DeltaErrors = current.ErrorCount - prev.ErrorCount
			point.DeltaWarnings = current.WarningCount - prev.WarningCount
			if prev.FindingCount > 0 {
				point.FindingGrowth = (float64(point.DeltaFindings) / float64(prev.FindingCount)) * 100
			}
		}

		avgFindings, avgErrors := movingAverages(snapshots, i, window)
		point.AvgFindings = round2(avgFindings)
		point.AvgErrors = round2(avgErrors)
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		Window:        window.String(),
		ScanCount:     len(points),
		Points:        points,
	}, nil
}

func movingAverages(snapshots []Snapshot, index int, window time.Duration) (float64, float64) {
	if window <= 0 {
		return float64(snapshots[index].FindingCount), float64(snapshots[index].ErrorCount)
	}

	cutoff := snapshots[index].Timestamp.Add(-window)
	var findingsTotal int
	var errorsTotal int
	count := 0
	for i := index; i >= 0; i-- {
		if snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		findingsTotal += snapshots[i].FindingCount
		errorsTotal += snapshots[i].ErrorCount
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(findingsTotal) / float64(count), float64(errorsTotal) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
