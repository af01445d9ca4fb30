// Package scanners runs the external analysis tools against app checkouts and parses their reports.
package scanners

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"goldendash/domain/quality"
)

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes name in dir. Standard error is folded into the returned error.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// ErrAppMissing is returned when the app checkout is not a directory
var ErrAppMissing = errors.New("app directory does not exist")

func checkApp(app quality.App) error {
	info, err := os.Stat(app.Path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrAppMissing, app.Path)
	}
	return nil
}

// readReport reads and removes a tool's JSON report. Linters exit non-zero when they find
// offenses, so a run error only matters when no report was written.
func readReport(path string, runErr error) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if runErr != nil {
			return nil, runErr
		}
		return nil, fmt.Errorf("report not written: %w", err)
	}
	_ = os.Remove(path)
	return raw, nil
}

func reportPath(tmpDir, tool, app string) string {
	return filepath.Join(tmpDir, fmt.Sprintf("%s_%s.json", tool, filepath.Base(app)))
}
