package pk

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/pkloom-cli/internal/dataset"
	"github.com/KaramelBytes/pkloom-cli/internal/demographics"
	"github.com/KaramelBytes/pkloom-cli/internal/merge"
)

func TestTrapezoidAUC(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   float64
		ok     bool
	}{
		{"triangle", []Point{{0, 0}, {1, 2}, {2, 0}}, 2, true},
		{"unsorted input", []Point{{2, 0}, {0, 0}, {1, 2}}, 2, true},
		{"constant", []Point{{0, 3}, {4, 3}}, 12, true},
		{"uneven spacing", []Point{{0, 0}, {0.5, 4}, {2, 4}}, 1 + 6, true},
		{"single point", []Point{{1, 5}}, 0, false},
		{"empty", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TrapezoidAUC(tt.points)
			if ok != tt.ok || math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("TrapezoidAUC = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTrapezoidAUCDoesNotReorderInput(t *testing.T) {
	pts := []Point{{2, 0}, {0, 0}, {1, 2}}
	TrapezoidAUC(pts)
	if pts[0].Time != 2 {
		t.Fatalf("input reordered: %+v", pts)
	}
}

func TestSummarizeReference(t *testing.T) {
	obs, err := dataset.Reference()
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	demo := []demographics.Record{{Subject: "1", Sex: "M", AgeYears: 27}}
	rows, err := merge.LeftJoin(obs, demo)
	if err != nil {
		t.Fatalf("LeftJoin: %v", err)
	}
	subs := Summarize(rows)
	if len(subs) != 12 {
		t.Fatalf("subjects = %d, want 12", len(subs))
	}
	s1 := subs[0]
	if s1.Subject != "1" || s1.Sex != "M" || s1.AgeYears != 27 || s1.WeightKg != 79.6 || s1.DoseMgPerKg != 4.02 {
		t.Fatalf("subject 1 = %+v", s1)
	}
	if s1.Points != 11 || s1.Insufficient {
		t.Fatalf("subject 1 points = %d insufficient = %v", s1.Points, s1.Insufficient)
	}
	if math.Abs(s1.AUC-148.923) > 1e-3 {
		t.Fatalf("subject 1 AUC = %v, want ~148.923", s1.AUC)
	}
	s2 := subs[1]
	if s2.HasDemographics() || !math.IsNaN(s2.AgeYears) {
		t.Fatalf("subject 2 should have no demographics: %+v", s2)
	}
}

func TestSummarizeInsufficientAndConflicts(t *testing.T) {
	rows := []merge.Row{
		{Observation: dataset.Observation{Subject: "a", WeightKg: 70, DoseMgPerKg: 4, TimeHr: 0, ConcMgPerL: 1}},
		{Observation: dataset.Observation{Subject: "b", WeightKg: 60, DoseMgPerKg: 5, TimeHr: 0, ConcMgPerL: 0}},
		{Observation: dataset.Observation{Subject: "b", WeightKg: 61, DoseMgPerKg: 5, TimeHr: 2, ConcMgPerL: 2}},
		{Observation: dataset.Observation{Subject: "b", WeightKg: 62, DoseMgPerKg: 5, TimeHr: 4, ConcMgPerL: 0}},
	}
	subs := Summarize(rows)
	if len(subs) != 2 {
		t.Fatalf("subjects = %d, want 2", len(subs))
	}
	if !subs[0].Insufficient || subs[0].AUC != 0 || subs[0].Points != 1 {
		t.Fatalf("subject a = %+v", subs[0])
	}
	if subs[1].AUC != 4 || subs[1].WeightKg != 60 {
		t.Fatalf("subject b = %+v", subs[1])
	}
	notes := ConstantFieldConflicts(rows)
	if len(notes) != 1 || !strings.HasPrefix(notes[0], "subject b:") {
		t.Fatalf("notes = %#v", notes)
	}
}
