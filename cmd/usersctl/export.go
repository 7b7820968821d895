package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/StudioUsers/internal/core"
)

func newExportCmd(a *app) *cobra.Command {
	var term, searchType, studio string

	cmd := &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export users to CSV (\"-\" writes to stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := core.ExportFilename(time.Now())
			if len(args) == 1 {
				path = args[0]
			}

			ctx := actorContext(cmd.Context())
			svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			users, err := svc.ExportUsers(ctx, strings.TrimSpace(term), core.SearchType(searchType), studio)
			if err != nil {
				return err
			}

			if err := writeExport(cmd.OutOrStdout(), path, users); err != nil {
				return err
			}
			if path != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d users to %s\n", len(users), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&term, "search", "", "only export users matching this term")
	cmd.Flags().StringVar(&searchType, "type", "", "search type: email, phone or name")
	cmd.Flags().StringVar(&studio, "studio", "", "only export users of this studio")
	return cmd
}

// writeExport writes users to path, or to stdout when path is "-".
func writeExport(stdout io.Writer, path string, users []core.User) error {
	if path == "-" {
		return core.WriteUsersCSV(stdout, users)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := core.WriteUsersCSV(f, users); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
