package plot

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Boxplots writes box_<covariate>.png for weight, dose, age and time, one box per sex.
func Boxplots(dir string, in Input) ([]string, error) {
	var files []string
	for _, cov := range covariates(in) {
		p := plot.New()
		p.Title.Text = cov.Name + " by sex"
		p.Y.Label.Text = cov.Label()
		var names []string
		for _, g := range cov.Groups {
			if len(g.Values) == 0 {
				continue
			}
			box, err := plotter.NewBoxPlot(vg.Points(30), float64(len(names)), plotter.Values(g.Values))
			if err != nil {
				return nil, fmt.Errorf("boxplot %s %s: %w", cov.Slug, g.Key, err)
			}
			p.Add(box)
			names = append(names, g.Key)
		}
		if len(names) == 0 {
			continue
		}
		p.NominalX(names...)
		out := filepath.Join(dir, "box_"+cov.Slug+".png")
		if err := p.Save(4*vg.Inch, 4*vg.Inch, out); err != nil {
			return nil, fmt.Errorf("save %s: %w", out, err)
		}
		files = append(files, out)
	}
	return files, nil
}

// ConcentrationTime draws one line per subject, colored by dose, with point
// glyphs by sex, and saves it to path (format from the extension).
func ConcentrationTime(path string, in Input) error {
	p := plot.New()
	p.Title.Text = "Concentration over time by subject"
	p.X.Label.Text = "Time since dose [h]"
	p.Y.Label.Text = "Concentration [mg/L]"
	p.Legend.Top = true

	scale := newDoseScale(in.Subjects)
	series := subjectSeries(in.Rows)
	seen := map[string]bool{}
	for _, s := range in.Subjects {
		pts := series[s.Subject]
		if len(pts) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(pts))
		for i, pt := range pts {
			xys[i].X = pt.Time
			xys[i].Y = pt.Conc
		}
		col := scale.color(s.DoseMgPerKg)
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("line for subject %s: %w", s.Subject, err)
		}
		line.LineStyle.Color = col
		line.LineStyle.Width = vg.Points(1)
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("points for subject %s: %w", s.Subject, err)
		}
		sc.GlyphStyle.Color = col
		sc.GlyphStyle.Shape = glyphFor(s.Sex)
		sc.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(line, sc)

		key := sexKey(s.Sex)
		if !seen[key] {
			seen[key] = true
			thumb, err := plotter.NewScatter(plotter.XYs{{}})
			if err != nil {
				return err
			}
			thumb.GlyphStyle.Color = color.Gray{Y: 80}
			thumb.GlyphStyle.Shape = glyphFor(s.Sex)
			thumb.GlyphStyle.Radius = vg.Points(2.5)
			p.Legend.Add("sex="+key, thumb)
		}
	}
	p.Legend.Add(fmt.Sprintf("dose %.2f→%.2f mg/kg: blue→red", scale.lo, scale.hi))
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func glyphFor(sex string) draw.GlyphDrawer {
	switch symbolFor(sex) {
	case "triangle":
		return draw.TriangleGlyph{}
	case "circle":
		return draw.CircleGlyph{}
	default:
		return draw.BoxGlyph{}
	}
}
