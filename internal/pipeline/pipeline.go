// Package pipeline runs load, clean, merge, aggregate and report in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/pkloom-cli/internal/analysis"
	"github.com/KaramelBytes/pkloom-cli/internal/dataset"
	"github.com/KaramelBytes/pkloom-cli/internal/demographics"
	"github.com/KaramelBytes/pkloom-cli/internal/logging"
	"github.com/KaramelBytes/pkloom-cli/internal/merge"
	"github.com/KaramelBytes/pkloom-cli/internal/pk"
	"github.com/KaramelBytes/pkloom-cli/internal/plot"
	"github.com/KaramelBytes/pkloom-cli/internal/tabular"
)

// ErrUnmatchedSubjects is returned when observations lack demographics and
// AllowUnmatched is off.
var ErrUnmatchedSubjects = errors.New("subjects without demographics")

// Options configures one run. Zero values fall back to the defaults noted.
type Options struct {
	// ClinicalPath replaces the built-in reference dataset when set.
	ClinicalPath string
	DMPath       string
	DMSheet      string
	// Alpha defaults to analysis.DefaultAlpha.
	Alpha float64
	// GroupBy is "sex" (default) or "dose".
	GroupBy         string
	MaxPlausibleAge float64
	AllowUnmatched  bool
	// Overrides defaults to demographics.DefaultOverrides when nil.
	Overrides demographics.Overrides
	// PlotsDir enables figure output when set.
	PlotsDir string
}

// Result holds every intermediate table along with the report.
type Result struct {
	RunID        string
	Observations []dataset.Observation
	Demographics []demographics.Record
	Rows         []merge.Row
	Subjects     []pk.SubjectSummary
	Report       *analysis.Report
	Plots        []string
}

// Run executes the pipeline. ctx is checked between stages.
func Run(ctx context.Context, opt Options) (*Result, error) {
	if opt.Alpha == 0 {
		opt.Alpha = analysis.DefaultAlpha
	}
	if opt.Alpha <= 0 || opt.Alpha >= 1 {
		return nil, fmt.Errorf("invalid alpha %v: want 0 < alpha < 1", opt.Alpha)
	}
	if opt.GroupBy == "" {
		opt.GroupBy = "sex"
	}
	groupKey, err := groupKeyFunc(opt.GroupBy)
	if err != nil {
		return nil, err
	}
	if opt.Overrides == nil {
		opt.Overrides = demographics.DefaultOverrides()
	}
	if opt.DMPath == "" {
		opt.DMPath = "dm.csv"
	}

	res := &Result{RunID: uuid.NewString()}
	log := logging.WithField("run", res.RunID)

	// Load
	clinicalName := dataset.ReferenceName
	if opt.ClinicalPath == "" {
		res.Observations, err = dataset.Reference()
	} else {
		clinicalName = filepath.Base(opt.ClinicalPath)
		res.Observations, err = dataset.LoadObservations(opt.ClinicalPath, tabular.Options{})
	}
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	raw, err := demographics.Load(opt.DMPath, tabular.Options{SheetName: opt.DMSheet})
	if err != nil {
		return nil, fmt.Errorf("load demographics: %w", err)
	}
	log.WithFields(logrus.Fields{
		"observations": len(res.Observations),
		"subjects":     len(dataset.Subjects(res.Observations)),
		"demographics": len(raw),
	}).Info("loaded inputs")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Clean
	cleaned, notes, err := demographics.Clean(raw, demographics.CleanOptions{
		Overrides:       opt.Overrides,
		MaxPlausibleAge: opt.MaxPlausibleAge,
	})
	if err != nil {
		return nil, fmt.Errorf("clean demographics: %w", err)
	}
	res.Demographics = cleaned
	for _, n := range notes {
		log.Debug(n)
	}
	log.WithField("notes", len(notes)).Info("cleaned demographics")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Merge
	res.Rows, err = merge.LeftJoin(res.Observations, cleaned)
	if err != nil {
		return nil, err
	}
	if missing := merge.Unmatched(res.Rows); len(missing) > 0 {
		if !opt.AllowUnmatched {
			return nil, fmt.Errorf("%w: %s", ErrUnmatchedSubjects, strings.Join(missing, ", "))
		}
		note := fmt.Sprintf("subjects without demographics (grouped as %s): %s", plot.MissingKey, strings.Join(missing, ", "))
		log.Warn(note)
		notes = append(notes, note)
	}
	log.WithField("rows", len(res.Rows)).Info("merged demographics")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Aggregate
	res.Subjects = pk.Summarize(res.Rows)
	notes = append(notes, pk.ConstantFieldConflicts(res.Rows)...)
	for _, s := range res.Subjects {
		if s.Insufficient {
			notes = append(notes, fmt.Sprintf("subject %s: %d point(s), AUC undefined and reported as 0", s.Subject, s.Points))
		}
	}
	log.WithField("subjects", len(res.Subjects)).Info("computed AUC")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Report
	res.Report = buildReport(res, opt, groupKey, clinicalName+" + "+filepath.Base(opt.DMPath), notes)
	if opt.PlotsDir != "" {
		res.Plots, err = plot.WriteAll(opt.PlotsDir, plot.Input{Subjects: res.Subjects, Rows: res.Rows})
		if err != nil {
			return nil, fmt.Errorf("write plots: %w", err)
		}
		log.WithField("files", len(res.Plots)).Info("wrote plots")
	}
	return res, nil
}

func groupKeyFunc(name string) (func(pk.SubjectSummary) string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sex":
		return func(s pk.SubjectSummary) string {
			if s.Sex == "" {
				return plot.MissingKey
			}
			return s.Sex
		}, nil
	case "dose":
		return func(s pk.SubjectSummary) string { return strconv.FormatFloat(s.DoseMgPerKg, 'f', 2, 64) }, nil
	default:
		return nil, fmt.Errorf("unsupported group_by %q (want sex or dose)", name)
	}
}

func buildReport(res *Result, opt Options, key func(pk.SubjectSummary) string, name string, notes []string) *analysis.Report {
	subs := res.Subjects
	value := func(get func(pk.SubjectSummary) float64) []float64 {
		out := make([]float64, len(subs))
		for i, s := range subs {
			out[i] = get(s)
		}
		return out
	}
	auc := func(s pk.SubjectSummary) float64 { return s.AUC }
	covariate := func(name, unit string, get func(pk.SubjectSummary) float64) analysis.Covariate {
		return analysis.Covariate{
			Name:    name,
			Unit:    unit,
			Overall: analysis.Describe(value(get), opt.Alpha),
			Groups:  analysis.DescribeBy(subs, key, get, opt.Alpha),
		}
	}

	rep := &analysis.Report{
		Name:       name,
		RunID:      res.RunID,
		Rows:       len(res.Rows),
		Subjects:   len(subs),
		Alpha:      opt.Alpha,
		Metric:     "AUC",
		MetricUnit: "mg·h/L",
		GroupKey:   strings.ToLower(opt.GroupBy),
		Overall:    analysis.Describe(value(auc), opt.Alpha),
		Groups:     analysis.DescribeBy(subs, key, auc, opt.Alpha),
		Covariates: []analysis.Covariate{
			covariate("Weight", "kg", func(s pk.SubjectSummary) float64 { return s.WeightKg }),
			covariate("Dose", "mg/kg", func(s pk.SubjectSummary) float64 { return s.DoseMgPerKg }),
			covariate("Age", "years", func(s pk.SubjectSummary) float64 { return s.AgeYears }),
		},
		SampleHeader: []string{"Subject", "Sex", "Age [years]", "Weight [kg]", "Dose [mg/kg]", "Points", "AUC [mg·h/L]"},
		Warnings:     notes,
	}
	for _, s := range subs {
		rep.Samples = append(rep.Samples, []string{
			s.Subject,
			orNA(s.Sex),
			formatNum(s.AgeYears, 1),
			formatNum(s.WeightKg, 1),
			formatNum(s.DoseMgPerKg, 2),
			strconv.Itoa(s.Points),
			formatNum(s.AUC, 2),
		})
	}
	return rep
}

func orNA(s string) string {
	if s == "" {
		return plot.MissingKey
	}
	return s
}

func formatNum(v float64, prec int) string {
	if math.IsNaN(v) {
		return plot.MissingKey
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
