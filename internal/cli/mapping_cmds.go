package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cadnorm/internal/apperror"
	"cadnorm/internal/engine"
	"cadnorm/internal/ingest"
	"cadnorm/internal/mapping"
)

// errInvalid signals a finished run whose output failed checks.
var errInvalid = errors.New("validation failed")

// loadOverride reads and checks a saved mapping. An empty path yields nil.
func (a *app) loadOverride(path string) (*mapping.FieldMapping, error) {
	if path == "" {
		return nil, nil
	}

	fm, err := mapping.LoadFile(path)
	if err != nil {
		return nil, err
	}

	diags := mapping.Validate(fm, a.reg)
	if diags.HasErrors() {
		msgs := make([]string, len(diags.Errors))
		for i, d := range diags.Errors {
			msgs[i] = d.String()
		}

		return nil, apperror.NewInvalidMapping(fmt.Sprintf("mapping %s failed checks", path)).
			WithDetail("errors", msgs).
			WithCause(diags.Error())
	}

	return fm, nil
}

func (a *app) standardizeFile(ctx context.Context, path string, override *mapping.FieldMapping) (*engine.Result, error) {
	recs, err := ingest.ReadFile(path)
	if err != nil {
		return nil, err
	}

	res, err := a.engine.Standardize(ctx, engine.Request{Records: recs, ToolID: a.cfg.Tool, Override: override})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return res, nil
}

func (a *app) suggestCmd() *cobra.Command {
	var (
		write       string
		mappingFile string
	)

	cmd := &cobra.Command{
		Use:   "suggest <file>",
		Short: "Propose a field mapping for an export",
		Long: `Suggest resolves a mapping for the export's columns and prints it as YAML.
Review it, edit it, and replay it with "apply --mapping".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, err := a.loadOverride(mappingFile)
			if err != nil {
				return err
			}

			recs, err := ingest.ReadFile(args[0])
			if err != nil {
				return err
			}

			p, err := a.engine.Map(cmd.Context(), engine.Request{Records: recs, ToolID: a.cfg.Tool, Override: override})
			if err != nil {
				return err
			}

			for _, u := range p.Unmapped {
				line := fmt.Sprintf("unmapped %s: %s", u.Target, u.Reason)
				if cols := u.Suggestions.Columns(); len(cols) > 0 {
					line += " (did you mean " + strings.Join(cols, ", ") + "?)"
				}

				fmt.Fprintln(cmd.ErrOrStderr(), line)
			}

			if write != "" {
				if err := mapping.WriteFile(p.Mapping, write); err != nil {
					return err
				}

				fmt.Fprintf(cmd.ErrOrStderr(), "mapping written to %s\n", write)

				return nil
			}

			data, err := mapping.Marshal(p.Mapping)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVar(&write, "write", "", "write the mapping to this file instead of stdout")
	cmd.Flags().StringVarP(&mappingFile, "mapping", "m", "", "saved mapping to start from")

	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	var mappingFile string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check whether an export satisfies the tool profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override, err := a.loadOverride(mappingFile)
			if err != nil {
				return err
			}

			res, err := a.standardizeFile(cmd.Context(), args[0], override)
			if err != nil {
				return err
			}

			err = a.render(cmd.OutOrStdout(), res.Validation, func(w io.Writer) error {
				resultSummary(w, args[0], res)
				return nil
			})
			if err != nil {
				return err
			}

			if !res.Validation.Valid {
				return fmt.Errorf("%s: %w for %s", args[0], errInvalid, res.ToolID)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&mappingFile, "mapping", "m", "", "saved mapping to replay")

	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <mapping>",
		Short: "Check a saved mapping file against the field registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fm, err := mapping.LoadFile(args[0])
			if err != nil {
				return err
			}

			diags := mapping.Validate(fm, a.reg)

			err = a.render(cmd.OutOrStdout(), diags, func(w io.Writer) error {
				for _, d := range diags.Errors {
					fmt.Fprintln(w, d.String())
				}

				for _, d := range diags.Warnings {
					fmt.Fprintln(w, d.String())
				}

				if diags.IsValid() {
					fmt.Fprintf(w, "%s: %d entries ok\n", args[0], fm.Len())
				}

				return nil
			})
			if err != nil {
				return err
			}

			if diags.HasErrors() {
				return fmt.Errorf("%s: %w", args[0], errInvalid)
			}

			return nil
		},
	}
}
