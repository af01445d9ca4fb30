package scanners

import (
	"context"
	"fmt"
	"strings"
	"time"

	"goldendash/domain/quality"
	"goldendash/ports"

	"github.com/tidwall/gjson"
)

// Brakeman reports security warnings
type Brakeman struct {
	runner ports.CommandRunner
	tmpDir string
	now    func() time.Time
}

// NewBrakeman creates a security scanner writing reports under tmpDir
func NewBrakeman(runner ports.CommandRunner, tmpDir string) *Brakeman {
	return &Brakeman{runner: runner, tmpDir: tmpDir, now: time.Now}
}

func (b *Brakeman) Type() string { return quality.ScanSecurity }

func (b *Brakeman) Scan(ctx context.Context, app quality.App) ([]quality.Scan, error) {
	if err := checkApp(app); err != nil {
		return nil, err
	}

	out := reportPath(b.tmpDir, "brakeman", app.Name)
	_, runErr := b.runner.Run(ctx, app.Path, "brakeman", "-q", "-f", "json", "-o", out)
	raw, err := readReport(out, runErr)
	if err != nil {
		return nil, fmt.Errorf("brakeman scan failed for %s: %w", app.Name, err)
	}
	return ParseBrakeman(raw, b.now()), nil
}

// ParseBrakeman converts a Brakeman JSON report into findings
func ParseBrakeman(raw []byte, at time.Time) []quality.Scan {
	var scans []quality.Scan
	gjson.GetBytes(raw, "warnings").ForEach(func(_, w gjson.Result) bool {
		scan := quality.Scan{
			ScanType:  quality.ScanSecurity,
			Severity:  confidenceSeverity(w.Get("confidence").String()),
			Message:   fmt.Sprintf("%s: %s", w.Get("warning_type").String(), w.Get("message").String()),
			FilePath:  w.Get("file").String(),
			ScannedAt: at,
		}
		if line := w.Get("line"); line.Exists() && line.Type == gjson.Number {
			n := int(line.Int())
			scan.LineNumber = &n
		}
		scans = append(scans, scan)
		return true
	})
	return scans
}

func confidenceSeverity(confidence string) string {
	switch strings.ToLower(confidence) {
	case "high":
		return quality.SeverityCritical
	case "medium":
		return quality.SeverityHigh
	case "weak":
		return quality.SeverityMedium
	default:
		return quality.SeverityLow
	}
}
