package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/StudioUsers/internal/core"
)

type importOptions struct {
	columns map[core.Field]*string
	dryRun  bool
	verbose bool
}

func newImportCmd(a *app) *cobra.Command {
	opts := importOptions{columns: make(map[core.Field]*string)}

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import contacts from a CSV file",
		Long: "Import contacts from a CSV file. Columns are matched to fields by header\n" +
			"name; use the column flags to pick headers the suggestion misses.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, a, args[0], opts)
		},
	}

	flagNames := map[core.Field]string{
		core.FieldFirstName: "first-name",
		core.FieldLastName:  "last-name",
		core.FieldPhone:     "phone",
		core.FieldEmail:     "email",
		core.FieldStudio:    "studio",
	}
	for _, f := range core.CanonicalFields {
		opts.columns[f] = cmd.Flags().String(flagNames[f]+"-column", "", "CSV header holding "+f.Label())
	}
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show what would happen without writing")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "list skipped rows")
	return cmd
}

// resolveMapping starts from the header suggestion and applies explicit columns.
func resolveMapping(headers []string, columns map[core.Field]*string) core.ColumnMapping {
	m := core.SuggestMapping(headers)
	for f, col := range columns {
		if col != nil && *col != "" {
			m[f] = *col
		}
	}
	return m
}

func runImport(cmd *cobra.Command, a *app, path string, opts importOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := actorContext(cmd.Context())
	svc, err := a.open(ctx)
	if err != nil {
		return err
	}

	upload, err := svc.StageUpload(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	defer svc.DiscardUpload(upload.ID)

	mapping := resolveMapping(upload.Headers, opts.columns)
	out := cmd.OutOrStdout()
	printMapping(out, mapping)

	if opts.dryRun {
		p, err := svc.PreviewUpload(ctx, upload.ID, mapping)
		if err != nil {
			return err
		}
		if p.Forecast == nil {
			return mapping.Validate(upload.Headers)
		}
		fmt.Fprintf(out, "%d rows: %d to create, %d to update, %d to skip\n",
			p.TotalRows, p.Forecast.Create, p.Forecast.Update, p.Forecast.Skip)
		return nil
	}

	res, err := svc.ImportStaged(ctx, upload.ID, mapping)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.Message())
	if opts.verbose {
		printSkipped(out, res)
	}
	return nil
}

func printMapping(w io.Writer, m core.ColumnMapping) {
	for _, f := range core.CanonicalFields {
		col := m[f]
		if col == "" {
			col = "(unmapped)"
		}
		fmt.Fprintf(w, "%-10s <- %s\n", f.Label(), col)
	}
}

func printSkipped(w io.Writer, res core.ImportResult) {
	for _, o := range res.Outcomes {
		if o.Action == core.RowSkipped && o.Reason != "" {
			fmt.Fprintf(w, "row %d %s: %s\n", o.Row, o.Email, o.Reason)
		}
	}
}
