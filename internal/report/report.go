// Package report writes the collection artifacts: the metrics JSON document
// and the static dashboard page that presents it.
package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calcboard/calcboard/internal/domain"
)

//go:embed templates/index.html
var templateFS embed.FS

const (
	// DefaultOutputDir is the fixed relative directory both artifacts are
	// written to.
	DefaultOutputDir = "site"

	metricsFileName   = "metrics.json"
	dashboardFileName = "index.html"
)

// WriteMetrics serializes the report as indented JSON into dir and returns
// the path written. The report is never mutated after this point.
func WriteMetrics(r *domain.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %q: %w", dir, err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metrics report: %w", err)
	}
	path := filepath.Join(dir, metricsFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write metrics report: %w", err)
	}
	return path, nil
}

// RenderDashboard copies the embedded dashboard template into dir unchanged —
// no templating substitution happens; the page loads metrics.json client-side.
func RenderDashboard(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %q: %w", dir, err)
	}
	page, err := templateFS.ReadFile("templates/index.html")
	if err != nil {
		return "", fmt.Errorf("read dashboard template: %w", err)
	}
	path := filepath.Join(dir, dashboardFileName)
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return "", fmt.Errorf("write dashboard: %w", err)
	}
	return path, nil
}
