package cmd

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"

	"github.com/KaramelBytes/pkloom-cli/internal/pipeline"
	"github.com/KaramelBytes/pkloom-cli/internal/pk"
	"github.com/KaramelBytes/pkloom-cli/internal/utils"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	runDMPath         string
	runDMSheet        string
	runClinicalPath   string
	runOutputPath     string
	runPlotsDir       string
	runAlpha          float64
	runGroupBy        string
	runAllowUnmatched bool
	runJSONPath       string
	runPretty         bool
)

var pipelineCmd = &cobra.Command{
	Use:   "run",
	Short: "Merge, clean and summarize the dataset, then print the AUC report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt := pipeline.Options{
			ClinicalPath:    c.ClinicalPath,
			DMPath:          c.DMPath,
			DMSheet:         c.DMSheet,
			Alpha:           c.Alpha,
			GroupBy:         c.GroupBy,
			MaxPlausibleAge: c.MaxPlausibleAge,
			AllowUnmatched:  c.AllowUnmatched,
			Overrides:       c.AgeOverrides,
			PlotsDir:        c.PlotsDir,
		}
		// Flags win over config
		f := cmd.Flags()
		if f.Changed("dm") {
			opt.DMPath = runDMPath
		}
		if f.Changed("dm-sheet") {
			opt.DMSheet = runDMSheet
		}
		if f.Changed("clinical") {
			opt.ClinicalPath = runClinicalPath
		}
		if f.Changed("plots-dir") {
			opt.PlotsDir = runPlotsDir
		}
		if f.Changed("alpha") {
			opt.Alpha = runAlpha
		}
		if f.Changed("group-by") {
			opt.GroupBy = strings.ToLower(runGroupBy)
		}
		if f.Changed("allow-unmatched") {
			opt.AllowUnmatched = runAllowUnmatched
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		res, err := pipeline.Run(ctx, opt)
		if err != nil {
			return err
		}
		md := res.Report.Markdown()

		written := false
		if runOutputPath != "" {
			if err := utils.SafeWriteFile(runOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote report to %s\n", runOutputPath)
			written = true
		}
		if runJSONPath != "" {
			b, err := utils.PrettyJSON(subjectsJSON(res.Subjects))
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(runJSONPath, b); err != nil {
				return fmt.Errorf("write subjects json: %w", err)
			}
			fmt.Printf("✓ Wrote %d subject summaries to %s\n", len(res.Subjects), runJSONPath)
		}
		for _, p := range res.Plots {
			fmt.Printf("✓ Wrote %s\n", p)
		}
		if n := len(res.Report.Warnings); n > 0 {
			fmt.Printf("⚠ %d data-quality note(s); see [NOTES]\n", n)
		}
		if !written {
			if runPretty {
				out, err := renderTerminal(md)
				if err != nil {
					return err
				}
				fmt.Print(out)
				return nil
			}
			fmt.Println(md)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.Flags().StringVar(&runDMPath, "dm", "", "demographics table (.csv, .tsv or .xlsx; default dm.csv)")
	pipelineCmd.Flags().StringVar(&runDMSheet, "dm-sheet", "", "XLSX: sheet name of the demographics table")
	pipelineCmd.Flags().StringVar(&runClinicalPath, "clinical", "", "concentration-time table replacing the built-in theoph dataset")
	pipelineCmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
	pipelineCmd.Flags().StringVar(&runJSONPath, "json", "", "optional path to write per-subject summaries as JSON")
	pipelineCmd.Flags().StringVar(&runPlotsDir, "plots-dir", "", "directory for PNG plots and report.html")
	pipelineCmd.Flags().Float64Var(&runAlpha, "alpha", 0.05, "significance level for two-sided confidence intervals")
	pipelineCmd.Flags().StringVar(&runGroupBy, "group-by", "sex", "subgroup key: sex | dose")
	pipelineCmd.Flags().BoolVar(&runPretty, "pretty", false, "render the report for the terminal instead of raw Markdown")
	pipelineCmd.Flags().BoolVar(&runAllowUnmatched, "allow-unmatched", false, "keep subjects without demographics (grouped as NA)")
}

// renderTerminal styles the Markdown report for an ANSI terminal.
func renderTerminal(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("init renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out, nil
}

type subjectJSON struct {
	Subject      string   `json:"subject"`
	Sex          string   `json:"sex,omitempty"`
	AgeYears     *float64 `json:"age_years,omitempty"`
	WeightKg     float64  `json:"weight_kg"`
	DoseMgPerKg  float64  `json:"dose_mg_per_kg"`
	Points       int      `json:"points"`
	AUC          float64  `json:"auc"`
	Insufficient bool     `json:"insufficient,omitempty"`
}

// subjectsJSON drops NaN ages, which encoding/json rejects.
func subjectsJSON(subs []pk.SubjectSummary) []subjectJSON {
	out := make([]subjectJSON, len(subs))
	for i, s := range subs {
		out[i] = subjectJSON{
			Subject:      s.Subject,
			Sex:          s.Sex,
			WeightKg:     s.WeightKg,
			DoseMgPerKg:  s.DoseMgPerKg,
			Points:       s.Points,
			AUC:          s.AUC,
			Insufficient: s.Insufficient,
		}
		if !math.IsNaN(s.AgeYears) {
			age := s.AgeYears
			out[i].AgeYears = &age
		}
	}
	return out
}
