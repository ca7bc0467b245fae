// Package plot renders the report figures: boxplots of covariates by sex and
// concentration-time curves per subject, as static PNGs and one interactive
// HTML page.
package plot

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot/palette/moreland"

	"github.com/KaramelBytes/pkloom-cli/internal/merge"
	"github.com/KaramelBytes/pkloom-cli/internal/pk"
	"github.com/KaramelBytes/pkloom-cli/internal/utils"
)

// MissingKey labels subjects without demographics.
const MissingKey = "NA"

// Input is the data every figure is drawn from.
type Input struct {
	Subjects []pk.SubjectSummary
	Rows     []merge.Row
}

// WriteAll renders the static figures and report.html into dir and returns
// the written paths.
func WriteAll(dir string, in Input) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create plots dir: %w", err)
	}
	files, err := Boxplots(dir, in)
	if err != nil {
		return nil, err
	}
	ct := filepath.Join(dir, "concentration_time.png")
	if err := ConcentrationTime(ct, in); err != nil {
		return nil, err
	}
	files = append(files, ct)

	var buf bytes.Buffer
	if err := Interactive(&buf, in); err != nil {
		return nil, err
	}
	html := filepath.Join(dir, "report.html")
	if err := utils.SafeWriteFile(html, buf.Bytes()); err != nil {
		return nil, err
	}
	return append(files, html), nil
}

type seriesGroup struct {
	Key    string
	Values []float64
}

type covariate struct {
	Name   string
	Unit   string
	Slug   string
	Groups []seriesGroup
}

func (c covariate) Label() string { return fmt.Sprintf("%s [%s]", c.Name, c.Unit) }

func sexKey(sex string) string {
	if sex == "" {
		return MissingKey
	}
	return sex
}

// covariates partitions weight, dose and age (one value per subject) and
// elapsed time (one value per observation) by sex.
func covariates(in Input) []covariate {
	perSubject := func(name, unit, slug string, value func(pk.SubjectSummary) float64) covariate {
		acc := map[string][]float64{}
		for _, s := range in.Subjects {
			v := value(s)
			if math.IsNaN(v) {
				continue
			}
			acc[sexKey(s.Sex)] = append(acc[sexKey(s.Sex)], v)
		}
		return covariate{Name: name, Unit: unit, Slug: slug, Groups: sortedGroups(acc)}
	}
	times := map[string][]float64{}
	for _, r := range in.Rows {
		key := MissingKey
		if r.Demographics != nil {
			key = sexKey(r.Demographics.Sex)
		}
		times[key] = append(times[key], r.TimeHr)
	}
	return []covariate{
		perSubject("Weight", "kg", "weight", func(s pk.SubjectSummary) float64 { return s.WeightKg }),
		perSubject("Dose", "mg/kg", "dose", func(s pk.SubjectSummary) float64 { return s.DoseMgPerKg }),
		perSubject("Age", "years", "age", func(s pk.SubjectSummary) float64 { return s.AgeYears }),
		{Name: "Time", Unit: "h", Slug: "time", Groups: sortedGroups(times)},
	}
}

func sortedGroups(acc map[string][]float64) []seriesGroup {
	out := make([]seriesGroup, 0, len(acc))
	for k, v := range acc {
		out = append(out, seriesGroup{Key: k, Values: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// subjectSeries returns each subject's (time, conc) points sorted by time.
func subjectSeries(rows []merge.Row) map[string][]pk.Point {
	out := map[string][]pk.Point{}
	for _, r := range rows {
		out[r.Subject] = append(out[r.Subject], pk.Point{Time: r.TimeHr, Conc: r.ConcMgPerL})
	}
	for _, pts := range out {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time < pts[j].Time })
	}
	return out
}

// doseScale maps doses onto a blue-to-red diverging color map.
type doseScale struct {
	lo, hi float64
}

func newDoseScale(subjects []pk.SubjectSummary) doseScale {
	d := doseScale{lo: math.Inf(1), hi: math.Inf(-1)}
	for _, s := range subjects {
		d.lo = math.Min(d.lo, s.DoseMgPerKg)
		d.hi = math.Max(d.hi, s.DoseMgPerKg)
	}
	if math.IsInf(d.lo, 0) {
		d.lo, d.hi = 0, 1
	}
	if d.hi <= d.lo {
		d.hi = d.lo + 1
	}
	return d
}

func (d doseScale) color(dose float64) color.Color {
	cm := moreland.SmoothBlueRed()
	cm.SetMin(d.lo)
	cm.SetMax(d.hi)
	c, err := cm.At(math.Max(d.lo, math.Min(d.hi, dose)))
	if err != nil {
		return color.Gray{Y: 128}
	}
	return c
}

func (d doseScale) hex(dose float64) string {
	r, g, b, _ := d.color(dose).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// symbolFor names the marker used for a sex in both renderers.
func symbolFor(sex string) string {
	switch sex {
	case "M":
		return "triangle"
	case "F":
		return "circle"
	default:
		return "rect"
	}
}
