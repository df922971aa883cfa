package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cadnorm/internal/common"
	"cadnorm/internal/dialect"
	"cadnorm/internal/ingest"
	"cadnorm/internal/registry"
)

type fieldView struct {
	ID          string                `json:"id" yaml:"id"`
	DisplayName string                `json:"displayName" yaml:"displayName"`
	Type        registry.SemanticType `json:"type" yaml:"type"`
	Category    registry.Category     `json:"category" yaml:"category"`
	Aliases     []string              `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Example     string                `json:"example,omitempty" yaml:"example,omitempty"`
}

func (a *app) fieldsCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List canonical fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := a.reg.Fields()
			if category != "" {
				c := registry.Category(strings.ToLower(category))
				if !c.IsValid() {
					return fmt.Errorf("unknown category %q", category)
				}

				fields = a.reg.FieldsByCategory(c)
			}

			views := make([]fieldView, len(fields))
			for i, f := range fields {
				views[i] = fieldView{
					ID: f.ID, DisplayName: f.DisplayName, Type: f.Type, Category: f.Category,
					Aliases: f.Aliases, Example: f.Example,
				}
			}

			return a.render(cmd.OutOrStdout(), views, func(w io.Writer) error {
				rows := make([][]string, len(views))
				for i, v := range views {
					rows[i] = []string{v.ID, string(v.Type), string(v.Category), strings.Join(v.Aliases, ", ")}
				}

				return table(w, "ID\tTYPE\tCATEGORY\tALIASES", rows)
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only fields of this category")

	return cmd
}

func (a *app) profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List tool profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles := a.reg.Profiles()

			return a.render(cmd.OutOrStdout(), profiles, func(w io.Writer) error {
				rows := make([][]string, len(profiles))
				for i, p := range profiles {
					rows[i] = []string{p.ID, strings.Join(p.RequiredFields, ", "), p.Description}
				}

				return table(w, "ID\tREQUIRED\tDESCRIPTION", rows)
			})
		},
	}
}

type detectView struct {
	File       string              `json:"file" yaml:"file"`
	Dialect    string              `json:"dialect,omitempty" yaml:"dialect,omitempty"`
	Vendor     string              `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Candidates []dialect.Candidate `json:"candidates" yaml:"candidates"`
}

func (a *app) detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Identify the CAD/RMS dialect of an export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := ingest.ReadFile(args[0])
			if err != nil {
				return err
			}

			var columns []string
			if first, ok := common.First(recs); ok {
				columns = first.Columns()
			}

			view := detectView{File: args[0], Candidates: a.catalog.Rank(columns)}
			if d, ok := a.catalog.Detect(columns); ok {
				view.Dialect, view.Vendor = d.Name, d.Vendor
			}

			return a.render(cmd.OutOrStdout(), view, func(w io.Writer) error {
				if view.Dialect == "" {
					fmt.Fprintln(w, "dialect: none")
				} else {
					fmt.Fprintf(w, "dialect: %s (%s)\n", view.Dialect, view.Vendor)
				}

				rows := make([][]string, len(view.Candidates))
				for i, c := range view.Candidates {
					rows[i] = []string{c.Name, fmt.Sprintf("%.0f%%", c.Coverage*100), strings.Join(c.Missing, ", ")}
				}

				return table(w, "DIALECT\tCOVERAGE\tMISSING", rows)
			})
		},
	}
}
