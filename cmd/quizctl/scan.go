package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/spf13/cobra"
)

const (
	defaultMaxFileSize = 16 << 20
	defaultMaxTextSize = 10 << 20
)

// scanResult describes one file without touching the database.
type scanResult struct {
	File         string
	Fingerprint  string
	Expected     int
	Questions    int
	Instructions int
	Err          error
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan FILE...",
		Short: "Check question files without importing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]scanResult, 0, len(args))
			for _, path := range args {
				results = append(results, scanFile(path))
			}
			writeScan(cmd.OutOrStdout(), results)

			for _, res := range results {
				if res.Err != nil {
					return fmt.Errorf("%d of %d files failed", countFailed(results), len(results))
				}
			}
			return nil
		},
	}
}

// readQuestionFile reads and decodes a local file the way uploads are.
func readQuestionFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	raw, err := core.ReadUpload(f, defaultMaxFileSize)
	if err != nil {
		return "", err
	}
	return core.DecodeUpload(raw, defaultMaxTextSize)
}

func scanFile(path string) scanResult {
	res := scanResult{File: filepath.Base(path)}

	content, err := readQuestionFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Fingerprint = core.Fingerprint(content)
	res.Expected = core.CountValidQuestions(content)

	table, err := core.ParseTable(content)
	if err != nil {
		res.Err = err
		return res
	}
	res.Questions = len(core.ExtractQuestions(table.Rows))
	res.Instructions = len(core.ExtractInstructions(table.Rows))
	if res.Questions == 0 {
		if res.Instructions > 0 {
			res.Err = core.ErrOnlyInstructions
		} else {
			res.Err = core.ErrNoValidQuestions
		}
	}
	return res
}

func writeScan(w io.Writer, results []scanResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tFINGERPRINT\tEXPECTED\tQUESTIONS\tINSTRUCTIONS\tSTATUS")
	for _, res := range results {
		status := "ok"
		if res.Err != nil {
			status = res.Err.Error()
		}
		fp := res.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			res.File, fp, res.Expected, res.Questions, res.Instructions, status)
	}
	tw.Flush()
}

func countFailed(results []scanResult) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
