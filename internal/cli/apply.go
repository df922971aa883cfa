package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cadnorm/internal/engine"
)

func (a *app) applyCmd() *cobra.Command {
	var (
		mappingFile string
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "apply <files or globs...>",
		Short: "Standardize export files",
		Long: `Apply standardizes each input file for the selected tool profile.
Files are processed concurrently. With --out-dir each result is written
next to the others as <name>.standardized.json; otherwise all results are
printed in argument order.

Examples:
  cadnorm apply calls.csv
  cadnorm apply "exports/**/*.csv" --out-dir out --tool incident-map
  cadnorm apply march.csv --mapping premierone.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, err := a.loadOverride(mappingFile)
			if err != nil {
				return err
			}

			paths, err := expand(args)
			if err != nil {
				return err
			}

			results := make([]*engine.Result, len(paths))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(a.cfg.Workers)

			for i, path := range paths {
				g.Go(func() error {
					res, err := a.standardizeFile(ctx, path, override)
					if err != nil {
						return err
					}

					if outDir != "" {
						out, err := a.writeResult(outDir, path, res)
						if err != nil {
							return err
						}

						a.log.Infow("file standardized", "input", path, "output", out, "batch_id", res.BatchID)
					}

					results[i] = res

					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if outDir != "" {
				for i, res := range results {
					resultSummary(w, paths[i], res)
				}

				return nil
			}

			return a.render(w, results, func(w io.Writer) error {
				for i, res := range results {
					resultSummary(w, paths[i], res)
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mappingFile, "mapping", "m", "", "saved mapping to replay")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "write one result file per input here")

	return cmd
}

// expand resolves glob arguments. Plain paths are kept as given so a
// missing file is reported by name.
func expand(args []string) ([]string, error) {
	var out []string

	seen := map[string]bool{}

	for _, arg := range args {
		matches := []string{arg}

		if hasMeta(arg) {
			var err error

			matches, err = doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("expand %q: %w", arg, err)
			}

			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match %q", arg)
			}
		}

		for _, m := range matches {
			clean := filepath.Clean(m)
			if !seen[clean] {
				seen[clean] = true
				out = append(out, clean)
			}
		}
	}

	return out, nil
}

func hasMeta(path string) bool {
	for _, r := range path {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}

	return false
}
