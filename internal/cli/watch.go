package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"cadnorm/internal/watch"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		mappingFile string
		outDir      string
		backfill    bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Standardize exports as they are dropped into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			override, err := a.loadOverride(mappingFile)
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = filepath.Join(dir, "standardized")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := watch.New(dir, func(ctx context.Context, path string) error {
				res, err := a.standardizeFile(ctx, path, override)
				if err != nil {
					return err
				}

				if _, err := a.writeResult(outDir, path, res); err != nil {
					return err
				}

				resultSummary(cmd.OutOrStdout(), path, res)

				return nil
			}, watch.WithLogger(a.log))

			if backfill {
				if err := w.Backfill(ctx); err != nil {
					return fmt.Errorf("backfill: %w", err)
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s, writing to %s\n", dir, outDir)

			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&mappingFile, "mapping", "m", "", "saved mapping to replay")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "where results go (default: <dir>/standardized)")
	cmd.Flags().BoolVar(&backfill, "backfill", false, "also standardize files already present")

	return cmd
}
