// Package pk derives per-subject pharmacokinetic summaries.
package pk

import "sort"

// Point is one (time, concentration) sample.
type Point struct {
	Time float64
	Conc float64
}

// TrapezoidAUC integrates concentration over time with the composite
// trapezoidal rule. Points are sorted by time first (stable, on a copy).
// With fewer than two points the area is undefined: it returns 0, false.
func TrapezoidAUC(points []Point) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time < pts[j].Time })
	var auc float64
	for i := 1; i < len(pts); i++ {
		auc += (pts[i].Time - pts[i-1].Time) * (pts[i].Conc + pts[i-1].Conc) / 2
	}
	return auc, true
}
