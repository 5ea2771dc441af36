package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/quizdeck/internal/config"
	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/JonMunkholm/quizdeck/internal/database"
	"github.com/spf13/cobra"
)

type importOptions struct {
	ownerID     int64
	name        string
	description string
	tags        string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import question files as new sets",
		Long: `Import ingests local .tsv files through the same engine as the HTTP
upload. Each file becomes one set owned by --owner. A file already imported
by that owner is reported as a duplicate.`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.ownerID < 1 {
				return fmt.Errorf("--owner must be a positive user id")
			}
			if opts.name != "" && len(args) > 1 {
				return fmt.Errorf("--name applies to a single file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args)
		},
	}

	cmd.Flags().Int64Var(&opts.ownerID, "owner", 0, "User id that owns the imported sets (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "Set name (default: file name)")
	cmd.Flags().StringVar(&opts.description, "description", "", "Set description")
	cmd.Flags().StringVar(&opts.tags, "tags", "", "Comma-separated tags")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func runImport(cmd *cobra.Command, opts importOptions, files []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadTool()
	if err != nil {
		return err
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	service := core.NewService(pool, core.ServiceConfigFrom(cfg), nil)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "FILE\tSET\tIMPORTED\tEXPECTED\tSTATUS")

	failed := 0
	for _, path := range files {
		name := opts.name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		res, err := importFile(cmd, service, path, core.IngestRequest{
			SetName:     name,
			Description: opts.description,
			OwnerID:     opts.ownerID,
			Tags:        opts.tags,
		})
		if err != nil {
			failed++
			fmt.Fprintf(tw, "%s\t-\t-\t-\t%s\n", filepath.Base(path), core.FormatUserError(err))
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", filepath.Base(path), res.SetID, res.Imported, res.Expected, importStatus(res))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func importFile(cmd *cobra.Command, service *core.Service, path string, req core.IngestRequest) (*core.IngestResult, error) {
	content, err := readQuestionFile(path)
	if err != nil {
		return nil, err
	}
	req.Content = content
	return service.ImportTSV(cmd.Context(), req)
}

func importStatus(res *core.IngestResult) string {
	switch {
	case res.Duplicate:
		return "duplicate"
	case res.Partial:
		return "partial"
	default:
		return "imported"
	}
}
