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

// HighValueCops are the only cops RuboCop is asked to run; style checks are left out
var HighValueCops = []string{
	"Lint/Debugger",
	"Lint/UnusedMethodArgument",
	"Lint/UnusedBlockArgument",
	"Lint/UselessAssignment",
	"Lint/ShadowingOuterLocalVariable",
	"Lint/AmbiguousOperator",
	"Lint/Void",
	"Security/Eval",
	"Security/Open",
	"Security/MarshalLoad",
	"Performance/RegexpMatch",
	"Performance/StringReplacement",
	"Performance/RedundantMerge",
	"Rails/OutputSafety",
	"Rails/UniqBeforePluck",
	"Rails/FindEach",
	"Rails/HasManyOrHasOneDependent",
}

// Rubocop reports lint offenses of the high-value cops
type Rubocop struct {
	runner ports.CommandRunner
	tmpDir string
	now    func() time.Time
}

// NewRubocop creates a lint scanner writing reports under tmpDir
func NewRubocop(runner ports.CommandRunner, tmpDir string) *Rubocop {
	return &Rubocop{runner: runner, tmpDir: tmpDir, now: time.Now}
}

func (r *Rubocop) Type() string { return quality.ScanRubocop }

func (r *Rubocop) Scan(ctx context.Context, app quality.App) ([]quality.Scan, error) {
	if err := checkApp(app); err != nil {
		return nil, err
	}

	out := reportPath(r.tmpDir, "rubocop", app.Name)
	args := make([]string, 0, len(HighValueCops)*2+5)
	for _, cop := range HighValueCops {
		args = append(args, "--only", cop)
	}
	args = append(args, "--format", "json", "--out", out, "app")

	_, runErr := r.runner.Run(ctx, app.Path, "rubocop", args...)
	raw, err := readReport(out, runErr)
	if err != nil {
		return nil, fmt.Errorf("rubocop scan failed for %s: %w", app.Name, err)
	}
	return ParseRubocop(raw, r.now()), nil
}

// ParseRubocop converts a RuboCop JSON report into findings
func ParseRubocop(raw []byte, at time.Time) []quality.Scan {
	var scans []quality.Scan
	gjson.GetBytes(raw, "files").ForEach(func(_, file gjson.Result) bool {
		offenses := file.Get("offenses")
		if !offenses.IsArray() {
			return true
		}
		path := file.Get("path").String()
		offenses.ForEach(func(_, o gjson.Result) bool {
			scan := quality.Scan{
				ScanType:  quality.ScanRubocop,
				Severity:  rubocopSeverity(o.Get("severity").String()),
				Message:   fmt.Sprintf("%s: %s", o.Get("cop_name").String(), o.Get("message").String()),
				FilePath:  path,
				ScannedAt: at,
			}
			if line := o.Get("location.start_line"); line.Exists() {
				n := int(line.Int())
				scan.LineNumber = &n
			}
			scans = append(scans, scan)
			return true
		})
		return true
	})
	return scans
}

func rubocopSeverity(severity string) string {
	switch strings.ToLower(severity) {
	case "error", "fatal":
		return quality.SeverityHigh
	case "warning":
		return quality.SeverityMedium
	default:
		return quality.SeverityLow
	}
}
