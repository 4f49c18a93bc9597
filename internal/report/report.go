// Package report renders run results: a live console reporter and the file
// formats written to the artifacts directory after a run.
package report

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
)

// Writer renders results into a file under dir and returns its path.
type Writer interface {
	Name() string
	Write(dir string, results *scenario.Results) (string, error)
}

var writers = map[string]func() Writer{
	"junit":    func() Writer { return JUnit{} },
	"markdown": func() Writer { return Markdown{} },
	"html":     func() Writer { return HTML{} },
	"xlsx":     func() Writer { return XLSX{} },
	"metrics":  func() Writer { return Metrics{} },
	"yaml":     func() Writer { return YAML{} },
}

// Names lists the supported report names.
func Names() []string {
	names := make([]string, 0, len(writers))
	for n := range writers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Writers returns the writers for names, in the given order.
func Writers(names []string) ([]Writer, error) {
	var out []Writer
	for _, n := range names {
		mk, ok := writers[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown report %q (supported: %s)", n, strings.Join(Names(), ", "))
		}
		out = append(out, mk())
	}
	return out, nil
}

// WriteAll writes every named report into dir. Every writer is attempted;
// the returned error combines all failures.
func WriteAll(dir string, names []string, results *scenario.Results, logger *zap.Logger) ([]string, error) {
	ws, err := Writers(names)
	if err != nil {
		return nil, err
	}
	if len(ws) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	var paths []string
	var errs error
	for _, w := range ws {
		path, err := w.Write(dir, results)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s report: %w", w.Name(), err))
			continue
		}
		logger.Info("report written", zap.String("report", w.Name()), zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, errs
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
