// Package quality models static-analysis results for the monitored applications.
package quality

import "time"

// Scan types
const (
	ScanSecurity       = "security"
	ScanStaticAnalysis = "static_analysis"
	ScanRubocop        = "rubocop"
	ScanTestCoverage   = "test_coverage"
	ScanJSComplexity   = "js_complexity"
	ScanArchitecture   = "architecture"
	ScanDrift          = "drift"
)

// ScanTypes lists every known scan type
var ScanTypes = []string{ScanSecurity, ScanStaticAnalysis, ScanRubocop, ScanTestCoverage, ScanJSComplexity, ScanArchitecture, ScanDrift}

// Severities, most severe first
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// Health statuses shared by apps and summaries
const (
	StatusPending  = "pending"
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// App is a monitored application checked out on disk
type App struct {
	ID            int64      `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Path          string     `db:"path" json:"path"`
	Status        string     `db:"status" json:"status"`
	LastScannedAt *time.Time `db:"last_scanned_at" json:"last_scanned_at"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// NeedsScan reports whether the app was never scanned or not within the window
func (a App) NeedsScan(now time.Time, window time.Duration) bool {
	return a.LastScannedAt == nil || a.LastScannedAt.Before(now.Add(-window))
}

// Scan is one finding reported by a scanner
type Scan struct {
	ID         int64     `db:"id" json:"id"`
	AppID      int64     `db:"app_id" json:"app_id"`
	ScanType   string    `db:"scan_type" json:"scan_type"`
	Severity   string    `db:"severity" json:"severity"`
	Message    string    `db:"message" json:"message"`
	FilePath   string    `db:"file_path" json:"file_path"`
	LineNumber *int      `db:"line_number" json:"line_number"`
	ScannedAt  time.Time `db:"scanned_at" json:"scanned_at"`
}

// IsSevere reports whether the finding counts as critical or high
func (s Scan) IsSevere() bool {
	return s.Severity == SeverityCritical || s.Severity == SeverityHigh
}

// Summary aggregates the findings of one scan type for one app
type Summary struct {
	AppID          int64     `db:"app_id" json:"app_id"`
	ScanType       string    `db:"scan_type" json:"scan_type"`
	TotalIssues    int       `db:"total_issues" json:"total_issues"`
	HighSeverity   int       `db:"high_severity" json:"high_severity"`
	MediumSeverity int       `db:"medium_severity" json:"medium_severity"`
	LowSeverity    int       `db:"low_severity" json:"low_severity"`
	ScannedAt      time.Time `db:"scanned_at" json:"scanned_at"`
}

// Status derives the health of a summary
func (s Summary) Status() string {
	switch {
	case s.TotalIssues == 0:
		return StatusHealthy
	case s.HighSeverity > 0:
		return StatusCritical
	case s.MediumSeverity > 5:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

// Summarize counts findings of one scan type
func Summarize(appID int64, scanType string, scans []Scan, at time.Time) Summary {
	summary := Summary{AppID: appID, ScanType: scanType, ScannedAt: at}
	for _, s := range scans {
		if s.ScanType != scanType {
			continue
		}
		summary.TotalIssues++
		switch {
		case s.IsSevere():
			summary.HighSeverity++
		case s.Severity == SeverityMedium:
			summary.MediumSeverity++
		case s.Severity == SeverityLow:
			summary.LowSeverity++
		}
	}
	return summary
}

// DetermineAppStatus derives app health from its severe and medium finding counts
func DetermineAppStatus(severe, medium int) string {
	if severe > 0 {
		return StatusCritical
	}
	if medium > 5 {
		return StatusWarning
	}
	return StatusHealthy
}

// StatusColor maps a status to its badge colour
func StatusColor(status string) string {
	switch status {
	case StatusHealthy:
		return "green"
	case StatusWarning:
		return "yellow"
	case StatusCritical:
		return "red"
	default:
		return "gray"
	}
}
