// Package analysis merges static and dynamic engine outputs into a
// unified severity breakdown, identified threats, and a risk score.
package analysis

import (
	"strings"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// Aggregate folds every finding from both pipelines into a severity
// breakdown. Each finding is counted once under the severity its
// origin implies.
func Aggregate(static *models.StaticResults, dynamic *models.DynamicResults) models.SeverityBreakdown {
	var breakdown models.SeverityBreakdown

	if static != nil {
		for _, m := range static.PatternMatches {
			breakdown.Count(m.Severity)
		}
		// A proven source-to-sink flow is always critical regardless
		// of the sink rule's standalone severity
		for range static.TaintFlows {
			breakdown.Count(models.SeverityCritical)
		}
		for _, cve := range static.CVEMatches {
			breakdown.Count(cve.Severity)
		}
	}

	if dynamic != nil {
		// Network, file and memory events are counted through their
		// extracted activity records below, not twice
		for _, ev := range dynamic.Events {
			switch ev.Category {
			case models.CategorySyscall, models.CategoryCodeExec:
				breakdown.Count(eventSeverity(ev))
			}
		}
		for range dynamic.NetworkActivities {
			breakdown.Count(models.SeverityMedium)
		}
		for _, fa := range dynamic.FileActivities {
			if fa.IsSensitive {
				breakdown.Count(models.SeverityHigh)
			} else {
				breakdown.Count(models.SeverityLow)
			}
		}
		for _, mf := range dynamic.MemoryFindings {
			if mf.Type == "memory_api" {
				breakdown.Count(models.SeverityHigh)
			} else {
				breakdown.Count(models.SeverityMedium)
			}
		}
		for _, fc := range dynamic.FuzzResults {
			if fc.Crashed {
				breakdown.Count(models.SeverityMedium)
			}
		}
	}

	return breakdown
}

// eventSeverity maps a runtime event to the severity it contributes.
func eventSeverity(ev models.RuntimeEvent) models.Severity {
	switch ev.Category {
	case models.CategorySyscall:
		if strings.Contains(ev.Detail, "os.system") || strings.Contains(ev.Detail, "subprocess") {
			return models.SeverityCritical
		}
		return models.SeverityMedium
	case models.CategoryCodeExec:
		return models.SeverityCritical
	}
	return models.SeverityInfo
}
