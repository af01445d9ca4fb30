package ports

import (
	"context"

	"goldendash/domain/quality"
)

// CommandRunner executes an external tool inside dir and returns its standard output
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// Scanner runs one analysis tool against an app checkout
type Scanner interface {
	// Type is the scan type the findings are stored under
	Type() string

	Scan(ctx context.Context, app quality.App) ([]quality.Scan, error)
}
