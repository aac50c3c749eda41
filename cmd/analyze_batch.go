package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashkit/internal/analysis"
	"github.com/KaramelBytes/dashkit/internal/dataset"
	"github.com/KaramelBytes/dashkit/internal/utils"
)

var (
	abOutDir     string
	abKind       string
	abSampleRows int
	abGroupBy    string
	abCorr       bool
	abDecimal    string
	abThousands  string
	abCountBy    string
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Profile several datasets with progress, optionally writing one summary per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		kind, err := dataset.ParseKind(abKind)
		if err != nil {
			return err
		}
		nf, err := parseNumberFormat(abDecimal, abThousands)
		if err != nil {
			return err
		}
		opt := analysis.DefaultProfileOptions()
		if abSampleRows >= 0 {
			opt.SampleRows = abSampleRows
		}
		opt.GroupBy = abGroupBy
		opt.Correlations = abCorr
		agg := aggregations{CountBy: abCountBy, Period: analysis.Month}
		loader := newLoader(dataset.WithNumberFormat(nf))

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			md, err := analyzeSource(cmd.Context(), loader, dataset.Source{Kind: kind, Location: path}, opt, agg)
			if err != nil {
				return err
			}
			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, md)
				}
				continue
			}
			outFile, renamed := summaryPath(abOutDir, path)
			if renamed && !abQuiet {
				fmt.Fprintf(out, "⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
			}
			if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote summary to %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs globs each argument, keeps literal paths that exist, and
// returns the unique matches sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// summaryPath names the summary of src inside dir. Files sharing a base name
// get a __2, __3, ... suffix instead of overwriting each other.
func summaryPath(dir, src string) (string, bool) {
	base := filepath.Base(src)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	outFile := filepath.Join(dir, safe+".summary.md")
	if _, err := os.Stat(outFile); err != nil {
		return outFile, false
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", safe, idx))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand, true
		}
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory to write <name>.summary.md files (default: print)")
	analyzeBatchCmd.Flags().StringVar(&abKind, "kind", "generic", "dataset kind applied to every file")
	analyzeBatchCmd.Flags().StringVar(&abDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	analyzeBatchCmd.Flags().StringVar(&abThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables samples)")
	analyzeBatchCmd.Flags().StringVar(&abGroupBy, "group-by", "", "column to count rows by in each summary")
	analyzeBatchCmd.Flags().BoolVar(&abCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	analyzeBatchCmd.Flags().StringVar(&abCountBy, "count-by", "", "append a count per value of this column")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
