package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"cadnorm/internal/config"
	"cadnorm/internal/engine"
)

// render writes v as JSON or YAML, or calls text for the text format.
func (a *app) render(w io.Writer, v any, text func(io.Writer) error) error {
	switch a.cfg.Output {
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return err
		}

		return enc.Close()
	case config.OutputText:
		return text(w)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	}
}

func table(w io.Writer, header string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)

	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}

	return tw.Flush()
}

// resultSummary is the text rendering of one standardized file.
func resultSummary(w io.Writer, name string, res *engine.Result) {
	dialect := res.Dialect
	if dialect == "" {
		dialect = "none"
	}

	fmt.Fprintf(w, "%s: batch %s, dialect %s, %d/%d records valid for %s, %d row warnings\n",
		name, res.BatchID, dialect, res.Validation.ValidRecords, res.Validation.Records,
		res.ToolID, len(res.RowWarnings()))

	for _, line := range res.Validation.Summary() {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// outputPath names the file a result is written to inside dir.
func (a *app) outputPath(dir, input string) string {
	ext := ".json"
	if a.cfg.Output == config.OutputYAML {
		ext = ".yaml"
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	return filepath.Join(dir, stem+".standardized"+ext)
}

// writeResult writes res to its output file in dir. The text format has
// no file form; it falls back to JSON.
func (a *app) writeResult(dir, input string, res *engine.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := a.outputPath(dir, input)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	err = a.render(f, res, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(res)
	})
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}
