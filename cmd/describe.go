package cmd

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/pkloom-cli/internal/analysis"
	"github.com/KaramelBytes/pkloom-cli/internal/tabular"
	"github.com/spf13/cobra"
)

var (
	descDelimiter  string
	descSheetName  string
	descSheetIndex int
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Inventory the columns of a CSV/TSV/XLSX input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := tabular.Options{SheetName: descSheetName, SheetIndex: descSheetIndex}
		switch descDelimiter {
		case "":
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", descDelimiter)
		}
		t, err := tabular.ReadFile(args[0], opt)
		if err != nil {
			return err
		}
		fmt.Print(describeTable(t))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVar(&descDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed from extension if omitted)")
	describeCmd.Flags().StringVar(&descSheetName, "sheet-name", "", "XLSX: sheet name to read")
	describeCmd.Flags().IntVar(&descSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// describeTable reports each column as numeric (all non-empty cells parse)
// or text, with a summary or distinct values respectively.
func describeTable(t *tabular.Table) string {
	var b strings.Builder
	b.WriteString("[TABLE]\n")
	b.WriteString(fmt.Sprintf("File: %s\n", t.Name))
	b.WriteString(fmt.Sprintf("Rows: %d\n", len(t.Rows)))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(t.Header)))
	b.WriteString("\n[COLUMNS]\n")
	for i, name := range t.Header {
		cells := t.Column(i)
		vals := make([]float64, 0, len(cells))
		numeric, empty := true, 0
		distinct := map[string]int{}
		for _, c := range cells {
			c = strings.TrimSpace(c)
			if c == "" {
				empty++
				vals = append(vals, math.NaN())
				continue
			}
			distinct[c]++
			v, ok := tabular.ParseNumber(c)
			if !ok {
				numeric = false
			}
			vals = append(vals, v)
		}
		if numeric && len(distinct) > 0 {
			s := analysis.Describe(vals, analysis.DefaultAlpha)
			b.WriteString(fmt.Sprintf("- %s: numeric, n=%d, missing %d, mean %.4g, std %.4g, min %.4g, median %.4g, max %.4g\n",
				name, s.Count, s.Missing, s.Mean, s.Std, s.Min, s.Median, s.Max))
			continue
		}
		keys := make([]string, 0, len(distinct))
		for k := range distinct {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(a, c int) bool {
			if distinct[keys[a]] != distinct[keys[c]] {
				return distinct[keys[a]] > distinct[keys[c]]
			}
			return keys[a] < keys[c]
		})
		shown := keys
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for j, k := range shown {
			shown[j] = fmt.Sprintf("%s (%d)", k, distinct[k])
		}
		b.WriteString(fmt.Sprintf("- %s: text, distinct %d, missing %d, top: %s\n",
			name, len(keys), empty, strings.Join(shown, ", ")))
	}
	return b.String()
}
